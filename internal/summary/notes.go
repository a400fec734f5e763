package summary

import (
	"html"
	"strings"
)

// Message is one side of a question/answer turn, flattened for display.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Notes renders the summary plus conversation history as an HTML document
// for the notes editor: a Summary heading and paragraph, then, only when
// history exists, a Follow-up Conversation heading with one labeled
// paragraph per message.
func Notes(summaryText string, history []Message) string {
	safe := summaryText
	if strings.TrimSpace(safe) == "" {
		safe = "No summary available."
	}

	var b strings.Builder
	b.WriteString("<h2>Summary</h2><p>" + safe + "</p>")

	if len(history) == 0 {
		return b.String()
	}

	b.WriteString("<h2>Follow-up Conversation</h2>")
	for _, msg := range history {
		b.WriteString("<p><strong>" + capitalize(msg.Role) + ":</strong> " + html.EscapeString(msg.Content) + "</p>")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

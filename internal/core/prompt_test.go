package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"medsumma/internal/store"
)

func TestStripWrapperTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wrapped answer", "<answer>42</answer>", "42"},
		{"plain text passes through", "plain text, no tags", "plain text, no tags"},
		{"surrounding whitespace", "  <response>\n  hello\n</response>  ", "hello"},
		{"first pair wins", "<a>one</a> and <b>two</b>", "one"},
		{"unclosed tag ignored", "<answer>no close here", "<answer>no close here"},
		{"mismatched close ignored", "<answer>text</response>", "<answer>text</response>"},
		{"first close bounds content", "<t>inner</t>trailing</t>", "inner"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripWrapperTags(tt.in))
		})
	}
}

func TestFollowUpPromptSectionOrder(t *testing.T) {
	sess := store.Session{
		OriginalText: "source text",
		SummaryHTML:  "prior summary",
		Turns: []store.Turn{
			{Question: "first q", Answer: "first a"},
			{Question: "second q", Answer: "second a"},
		},
	}

	prompt := followUpPrompt(sess, "new question")

	iText := strings.Index(prompt, "<medical_text>")
	iSummary := strings.Index(prompt, "<summary_of_text>")
	iHistory := strings.Index(prompt, "<conversation_history>")
	iQuestion := strings.Index(prompt, "<user_question>")
	assert.True(t, iText < iSummary && iSummary < iHistory && iHistory < iQuestion)

	assert.Contains(t, prompt, "User: first q\nAI: first a\nUser: second q\nAI: second a")
	assert.Contains(t, prompt, "new question")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "Provide your answer directly."))
}

func TestFollowUpPromptEmptyHistory(t *testing.T) {
	prompt := followUpPrompt(store.Session{OriginalText: "text", SummaryHTML: "sum"}, "q")
	assert.Contains(t, prompt, "<conversation_history>\n\n</conversation_history>")
}

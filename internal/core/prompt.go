package core

import (
	"fmt"
	"regexp"
	"strings"

	"medsumma/internal/store"
)

// followUpTemplate gives the model everything it needs to ground an
// answer: the source text, the summary it produced, the conversation so
// far, and the new question, in that fixed order.
const followUpTemplate = `
<medical_text>
%s
</medical_text>

<summary_of_text>
%s
</summary_of_text>

<conversation_history>
%s
</conversation_history>

<user_question>
%s
</user_question>

Provide your answer directly.
`

func followUpPrompt(sess store.Session, question string) string {
	lines := make([]string, 0, len(sess.Turns))
	for _, t := range sess.Turns {
		lines = append(lines, fmt.Sprintf("User: %s\nAI: %s", t.Question, t.Answer))
	}
	return fmt.Sprintf(followUpTemplate,
		sess.OriginalText,
		sess.SummaryHTML,
		strings.Join(lines, "\n"),
		question,
	)
}

var openingTag = regexp.MustCompile(`<(\w+)>`)

// stripWrapperTags removes a single enclosing tag pair from a response,
// e.g. "<answer>42</answer>" becomes "42". Models sometimes echo the
// prompt's tag style back. The first opening tag with a matching close is
// used and the inner content up to the first matching close is kept,
// trimmed; text without such a pair passes through unchanged. RE2 has no
// backreferences, so the matching close is located by plain search.
func stripWrapperTags(text string) string {
	text = strings.TrimSpace(text)
	for _, m := range openingTag.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		closing := "</" + name + ">"
		rest := text[m[1]:]
		if idx := strings.Index(rest, closing); idx >= 0 {
			return strings.TrimSpace(rest[:idx])
		}
	}
	return text
}

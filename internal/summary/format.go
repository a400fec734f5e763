package summary

import (
	"html"
	"strings"
)

const (
	header     = "<h2>Medical Summary</h2>"
	disclaimer = "<blockquote><b>⚠️ DISCLAIMER:</b> Not medical advice. Consult a professional.</blockquote>"
)

// Format renders a Structured record as sectioned HTML. Pure and
// idempotent for equal input. The header and disclaimer always come first;
// each section is emitted only when its list is non-empty, and section
// order is fixed regardless of how the record was populated. Every value
// is HTML-escaped before embedding.
func Format(s Structured) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(disclaimer)

	if takeaways := escapeDedup(s.KeyTakeaways); len(takeaways) > 0 {
		b.WriteString("<h3>📌 Key Takeaways</h3><ul>")
		for _, item := range takeaways {
			b.WriteString("<li>" + item + "</li>")
		}
		b.WriteString("</ul>")
	}

	if len(s.Medications) > 0 {
		b.WriteString("<h3>💊 Medications</h3>")
		for _, med := range s.Medications {
			name := escapeOr(med.Name, "Unknown")
			b.WriteString("<p><b>• " + name + "</b></p>")
			if d := escapeOr(med.Dosage, ""); d != "" {
				b.WriteString("<p style='margin-left: 20px;'>- Dosage: " + d + "</p>")
			}
			if a := escapeOr(med.Administration, ""); a != "" {
				b.WriteString("<p style='margin-left: 20px;'>- How to take: " + a + "</p>")
			}
			if desc := escapeOr(med.Description, ""); desc != "" {
				b.WriteString("<p style='margin-left: 20px;'><i>" + desc + "</i></p>")
			}
		}
		b.WriteString("<p><br></p>")
	}

	if len(s.MedicalTerms) > 0 {
		b.WriteString("<h3>📖 Terms Explained</h3>")
		for _, td := range s.MedicalTerms {
			term := escapeOr(td.Term, "Unknown")
			defn := escapeOr(td.Definition, "N/A")
			b.WriteString("<p><b>" + term + "</b>: " + defn + "</p>")
		}
		b.WriteString("<p><br></p>")
	}

	if questions := escapeDedup(s.QuestionsForProvider); len(questions) > 0 {
		b.WriteString("<h3>❓ Questions for Provider</h3><ol>")
		for _, q := range questions {
			b.WriteString("<li>" + q + "</li>")
		}
		b.WriteString("</ol><p><br></p>")
	}

	return b.String()
}

// escapeDedup escapes each item and drops exact duplicates of the escaped
// form, preserving first-seen order.
func escapeDedup(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		escaped := html.EscapeString(strings.TrimSpace(item))
		if escaped == "" {
			continue
		}
		if _, dup := seen[escaped]; dup {
			continue
		}
		seen[escaped] = struct{}{}
		out = append(out, escaped)
	}
	return out
}

func escapeOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return html.EscapeString(s)
}

package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordCoercion(t *testing.T) {
	rec := map[string]any{
		"key_takeaways": "single string, not a list",
		"medications": []any{
			map[string]any{"name": "Lisinopril", "dosage": "10mg"},
			"not an object, dropped",
			map[string]any{"name": "  Metformin  "},
		},
		"medical_terms":          map[string]any{"term": "Hypertension", "definition": "High blood pressure"},
		"questions_for_provider": []any{"Why this dose?", 42, nil},
	}

	s := FromRecord(rec)
	assert.Equal(t, []string{"single string, not a list"}, s.KeyTakeaways)
	require.Len(t, s.Medications, 2)
	assert.Equal(t, "Lisinopril", s.Medications[0].Name)
	assert.Equal(t, "10mg", s.Medications[0].Dosage)
	assert.Equal(t, "Metformin", s.Medications[1].Name)
	require.Len(t, s.MedicalTerms, 1)
	assert.Equal(t, "Hypertension", s.MedicalTerms[0].Term)
	assert.Equal(t, []string{"Why this dose?", "42"}, s.QuestionsForProvider)
}

func TestFromRecordMissingKeys(t *testing.T) {
	s := FromRecord(map[string]any{})
	assert.True(t, s.Empty())
}

func TestFormatEmptyRecordOnlyHeaderAndDisclaimer(t *testing.T) {
	out := Format(Structured{KeyTakeaways: []string{}})

	assert.Equal(t, header+disclaimer, out)
	assert.NotContains(t, out, "Key Takeaways")
	assert.NotContains(t, out, "Medications")
	assert.NotContains(t, out, "Terms Explained")
	assert.NotContains(t, out, "Questions for Provider")
}

func TestFormatDeduplicatesPreservingOrder(t *testing.T) {
	out := Format(Structured{
		KeyTakeaways: []string{"Stop smoking", "Stop smoking", "Drink water"},
	})

	assert.Equal(t, 2, strings.Count(out, "<li>"))
	first := strings.Index(out, "Stop smoking")
	second := strings.Index(out, "Drink water")
	assert.Greater(t, second, first)
	assert.Equal(t, first, strings.LastIndex(out, "Stop smoking"))
}

func TestFormatEscapesValues(t *testing.T) {
	out := Format(Structured{
		KeyTakeaways: []string{"<script>alert(1)</script>"},
	})

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormatMedicationDefaults(t *testing.T) {
	out := Format(Structured{
		Medications: []Medication{
			{Dosage: "5mg"},
			{Name: "Aspirin", Administration: "with food", Description: "Blood thinner"},
		},
	})

	assert.Contains(t, out, "<p><b>• Unknown</b></p>")
	assert.Contains(t, out, "Dosage: 5mg")
	assert.Contains(t, out, "How to take: with food")
	assert.Contains(t, out, "<i>Blood thinner</i>")
	// Empty sub-fields produce no sub-lines at all.
	assert.Equal(t, 1, strings.Count(out, "Dosage:"))
	assert.Equal(t, 1, strings.Count(out, "How to take:"))
}

func TestFormatTermDefaults(t *testing.T) {
	out := Format(Structured{
		MedicalTerms: []TermDefinition{
			{Term: "Edema"},
			{Definition: "orphan definition"},
		},
	})

	assert.Contains(t, out, "<p><b>Edema</b>: N/A</p>")
	assert.Contains(t, out, "<p><b>Unknown</b>: orphan definition</p>")
}

func TestFormatSectionOrderFixed(t *testing.T) {
	out := Format(Structured{
		QuestionsForProvider: []string{"q"},
		MedicalTerms:         []TermDefinition{{Term: "t", Definition: "d"}},
		Medications:          []Medication{{Name: "m"}},
		KeyTakeaways:         []string{"k"},
	})

	iTake := strings.Index(out, "Key Takeaways")
	iMeds := strings.Index(out, "Medications")
	iTerms := strings.Index(out, "Terms Explained")
	iQ := strings.Index(out, "Questions for Provider")
	assert.True(t, iTake < iMeds && iMeds < iTerms && iTerms < iQ)
}

func TestFormatIdempotent(t *testing.T) {
	s := Structured{
		KeyTakeaways: []string{"a", "b"},
		Medications:  []Medication{{Name: "x", Dosage: "1mg"}},
	}
	assert.Equal(t, Format(s), Format(s))
}

func TestNotesWithoutHistory(t *testing.T) {
	out := Notes("all good", nil)
	assert.Equal(t, "<h2>Summary</h2><p>all good</p>", out)
}

func TestNotesEmptySummaryFallback(t *testing.T) {
	out := Notes("  ", nil)
	assert.Contains(t, out, "No summary available.")
}

func TestNotesWithHistory(t *testing.T) {
	out := Notes("summary", []Message{
		{Role: "user", Content: "what now?"},
		{Role: "assistant", Content: "rest & hydrate"},
	})

	assert.Contains(t, out, "<h2>Follow-up Conversation</h2>")
	assert.Contains(t, out, "<p><strong>User:</strong> what now?</p>")
	assert.Contains(t, out, "<p><strong>Assistant:</strong> rest &amp; hydrate</p>")
}

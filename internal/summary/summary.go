// Package summary holds the structured patient summary record and the
// deterministic formatters that render it for display.
package summary

import (
	"fmt"
	"strings"
)

// Medication is one prescribed or mentioned drug. All fields optional.
type Medication struct {
	Name           string `json:"name"`
	Dosage         string `json:"dosage"`
	Administration string `json:"administration"`
	Description    string `json:"description"`
}

// TermDefinition explains one piece of medical jargon.
type TermDefinition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Structured is the typed record recovered from raw generation output.
type Structured struct {
	KeyTakeaways         []string         `json:"key_takeaways"`
	Medications          []Medication     `json:"medications"`
	MedicalTerms         []TermDefinition `json:"medical_terms"`
	QuestionsForProvider []string         `json:"questions_for_provider"`
}

// Empty reports whether the record carries no content at all.
func (s Structured) Empty() bool {
	return len(s.KeyTakeaways) == 0 && len(s.Medications) == 0 &&
		len(s.MedicalTerms) == 0 && len(s.QuestionsForProvider) == 0
}

// FromRecord coerces a decoded JSON object into a Structured record.
// Generation output is unreliable: a scalar where a list belongs becomes a
// singleton, scalars are stringified, and non-object entries in object
// lists are dropped rather than treated as fatal.
func FromRecord(rec map[string]any) Structured {
	return Structured{
		KeyTakeaways:         stringList(rec["key_takeaways"]),
		Medications:          medicationList(rec["medications"]),
		MedicalTerms:         termList(rec["medical_terms"]),
		QuestionsForProvider: stringList(rec["questions_for_provider"]),
	}
}

func stringList(v any) []string {
	items := asList(v)
	var out []string
	for _, item := range items {
		s := strings.TrimSpace(stringify(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func medicationList(v any) []Medication {
	var out []Medication
	for _, item := range asList(v) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Medication{
			Name:           field(obj, "name"),
			Dosage:         field(obj, "dosage"),
			Administration: field(obj, "administration"),
			Description:    field(obj, "description"),
		})
	}
	return out
}

func termList(v any) []TermDefinition {
	var out []TermDefinition
	for _, item := range asList(v) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, TermDefinition{
			Term:       field(obj, "term"),
			Definition: field(obj, "definition"),
		})
	}
	return out
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func field(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

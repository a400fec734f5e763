// Package extract recovers a structured record from messy LLM output.
// Models narrate, wrap answers in markdown fences, and sometimes emit
// several candidate objects before settling on a final one; the extractor
// tolerates all of that and keeps only the last candidate that parses.
package extract

import (
	"errors"
	"regexp"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// ErrNoStructuredData means no parseable object was found. This is a
// legitimate outcome the caller must handle, not a fault.
var ErrNoStructuredData = errors.New("no structured data found")

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// Record locates and decodes the structured object embedded in raw text.
// Strategy 1 tries ```json fenced blocks, last fence first: a model's final
// fenced answer supersedes earlier attempts. Strategy 2 falls back to a
// balanced-brace scan over the whole text, again last object first.
// Candidates that fail to parse are skipped silently.
func Record(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrNoStructuredData
	}

	fenced := fencedCandidates(text)
	for i := len(fenced) - 1; i >= 0; i-- {
		if rec, ok := tryParse(fenced[i]); ok {
			return rec, nil
		}
	}

	bare := braceCandidates(text)
	for i := len(bare) - 1; i >= 0; i-- {
		if rec, ok := tryParse(bare[i]); ok {
			return rec, nil
		}
	}

	return nil, ErrNoStructuredData
}

func fencedCandidates(text string) []string {
	var out []string
	for _, m := range fencedJSON.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// braceCandidates returns every maximal substring that opens at brace depth
// zero and closes back to depth zero, i.e. complete top-level objects only.
func braceCandidates(text string) []string {
	var out []string
	depth := 0
	start := -1
	for i, ch := range text {
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start != -1 {
				out = append(out, text[start:i+1])
				start = -1
			}
		}
	}
	return out
}

// tryParse decodes a candidate with a lenient JSON5 parser, so trailing
// commas and comments in model output do not sink an otherwise good block.
func tryParse(candidate string) (map[string]any, bool) {
	var rec map[string]any
	if err := json5.Unmarshal([]byte(candidate), &rec); err != nil {
		return nil, false
	}
	if rec == nil {
		return nil, false
	}
	return rec, true
}

package store

import (
	"database/sql/driver"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medsumma/internal/summary"
)

// arrayValue resolves a slice the way the INSERT does, returning the
// driver-level value pq would send to Postgres.
func arrayValue(t *testing.T, items []string) driver.Value {
	t.Helper()
	v, err := pq.Array(items).(driver.Valuer).Value()
	require.NoError(t, err)
	return v
}

func TestNewSessionRowNilStructured(t *testing.T) {
	row, err := newSessionRow(nil)
	require.NoError(t, err)

	// Raw-text fallback sessions must still insert: empty arrays, never NULL.
	assert.NotNil(t, arrayValue(t, row.takeaways))
	assert.NotNil(t, arrayValue(t, row.questions))
	assert.JSONEq(t, "[]", string(row.meds))
	assert.JSONEq(t, "[]", string(row.terms))
}

func TestNewSessionRowMissingLists(t *testing.T) {
	structured := &summary.Structured{
		Medications: []summary.Medication{{Name: "aspirin", Dosage: "81mg"}},
	}

	row, err := newSessionRow(structured)
	require.NoError(t, err)

	assert.NotNil(t, arrayValue(t, row.takeaways))
	assert.NotNil(t, arrayValue(t, row.questions))
	assert.Contains(t, string(row.meds), "aspirin")
	assert.JSONEq(t, "[]", string(row.terms))
}

func TestNewSessionRowFullRecord(t *testing.T) {
	structured := &summary.Structured{
		KeyTakeaways:         []string{"Rest", "Hydrate"},
		Medications:          []summary.Medication{{Name: "ibuprofen"}},
		MedicalTerms:         []summary.TermDefinition{{Term: "NSAID", Definition: "anti-inflammatory"}},
		QuestionsForProvider: []string{"How long?"},
	}

	row, err := newSessionRow(structured)
	require.NoError(t, err)

	assert.Equal(t, []string{"Rest", "Hydrate"}, row.takeaways)
	assert.Equal(t, []string{"How long?"}, row.questions)
	assert.Contains(t, string(row.meds), "ibuprofen")
	assert.Contains(t, string(row.terms), "NSAID")
}

// internal/documents/checklist_test.go
package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChecklist_StartsIncomplete(t *testing.T) {
	c := DefaultChecklist()

	assert.False(t, c.Complete())
	assert.Equal(t, []string{"id", "vehicle_title", "insurance", "income_proof"}, c.Missing())
}

func TestChecklist_RequiredSlotsOnlyGateSubmission(t *testing.T) {
	c := DefaultChecklist()

	for _, id := range []string{"id", "vehicle_title", "insurance", "income_proof"} {
		require.NoError(t, c.Record(id))
	}

	// Optional slots stay unsatisfied without blocking completion.
	assert.True(t, c.Complete())
	assert.Empty(t, c.Missing())
}

func TestChecklist_RecordUnknownSlot(t *testing.T) {
	c := DefaultChecklist()

	err := c.Record("passport")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "passport")
}

func TestChecklist_MultipleQuantityNeedsThreshold(t *testing.T) {
	c := NewChecklist([]Slot{
		{ID: "vehicle_photos", Name: "Vehicle Photos", Required: true, Quantity: Multiple, Max: 4},
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Record("vehicle_photos"))
		assert.False(t, c.Complete())
	}

	require.NoError(t, c.Record("vehicle_photos"))
	assert.True(t, c.Complete())
}

func TestChecklist_ExtraUploadsStaySatisfied(t *testing.T) {
	c := NewChecklist([]Slot{
		{ID: "id", Name: "ID", Required: true, Quantity: Single},
	})

	require.NoError(t, c.Record("id"))
	require.NoError(t, c.Record("id"))

	assert.True(t, c.Complete())
	assert.Equal(t, 2, c.Slots()[0].Count)
}

func TestNewChecklist_CopiesSlotDefinitions(t *testing.T) {
	defs := []Slot{{ID: "id", Name: "ID", Required: true, Quantity: Single}}

	first := NewChecklist(defs)
	require.NoError(t, first.Record("id"))

	// A second checklist from the same definitions starts fresh.
	second := NewChecklist(defs)
	assert.False(t, second.Complete())
	assert.Equal(t, 0, second.Slots()[0].Count)
}

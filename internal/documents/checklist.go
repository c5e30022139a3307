// internal/documents/checklist.go

// Package documents tracks the simulated upload checklist for the documents
// step. Uploads are count increments against per-slot thresholds; no files
// move anywhere.
package documents

import "fmt"

// Quantity says how many uploads satisfy a slot.
type Quantity string

const (
	// Single slots are satisfied by one upload.
	Single Quantity = "single"
	// Multiple slots need Max uploads.
	Multiple Quantity = "multiple"
)

// Slot is one named document or photo requirement.
type Slot struct {
	ID       string
	Name     string
	Required bool
	Quantity Quantity
	Max      int // threshold for Multiple slots
	Count    int
}

// Satisfied reports whether enough uploads were recorded for this slot.
func (s *Slot) Satisfied() bool {
	if s.Quantity == Multiple {
		return s.Count >= s.Max
	}
	return s.Count >= 1
}

// Checklist is the set of slots for one documents step.
type Checklist struct {
	slots []*Slot
}

// NewChecklist copies the given slot definitions into a fresh checklist.
func NewChecklist(slots []Slot) *Checklist {
	c := &Checklist{slots: make([]*Slot, 0, len(slots))}
	for i := range slots {
		slot := slots[i]
		c.slots = append(c.slots, &slot)
	}
	return c
}

// DefaultChecklist is the title-loan document set.
func DefaultChecklist() *Checklist {
	return NewChecklist([]Slot{
		{ID: "id", Name: "Government Issued ID", Required: true, Quantity: Single},
		{ID: "vehicle_title", Name: "Vehicle Title", Required: true, Quantity: Single},
		{ID: "insurance", Name: "Vehicle Insurance", Required: true, Quantity: Single},
		{ID: "income_proof", Name: "Proof of Income", Required: true, Quantity: Single},
		{ID: "bank_statement", Name: "Bank Statement", Required: false, Quantity: Single},
		{ID: "utility_bill", Name: "Utility Bill", Required: false, Quantity: Single},
	})
}

// Record counts one upload against the named slot.
func (c *Checklist) Record(slotID string) error {
	for _, slot := range c.slots {
		if slot.ID == slotID {
			slot.Count++
			return nil
		}
	}
	return fmt.Errorf("unknown document slot %q", slotID)
}

// Complete reports whether every required slot is satisfied.
func (c *Checklist) Complete() bool {
	for _, slot := range c.slots {
		if slot.Required && !slot.Satisfied() {
			return false
		}
	}
	return true
}

// Missing lists the required slots still short of their threshold.
func (c *Checklist) Missing() []string {
	var missing []string
	for _, slot := range c.slots {
		if slot.Required && !slot.Satisfied() {
			missing = append(missing, slot.ID)
		}
	}
	return missing
}

// Slots returns the slot list for rendering.
func (c *Checklist) Slots() []*Slot {
	return c.slots
}

// internal/nodeid/types.go
package nodeid

// Slot is the structured form of a numbered slot name such as `model_3`.
type Slot struct {
	Prefix string
	Index  int
}

// NewSlot creates the slot at index i for the given prefix.
func NewSlot(prefix string, i int) Slot {
	return Slot{Prefix: prefix, Index: i}
}

// internal/nodeid/parser.go
package nodeid

import (
	"regexp"
	"strconv"
	"strings"
)

// suffixRegex matches the numeric part of a slot name once `prefix_` is stripped.
var suffixRegex = regexp.MustCompile(`^(\d+)$`)

// HasPrefix reports whether name belongs to the slot family of prefix, i.e.
// starts with `prefix_`. It does not check that the suffix is numeric.
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(name, prefix+"_")
}

// ParseSlot parses name as a slot of the given prefix. It returns false for
// names outside the family and for malformed ones (`model_x`, `model_`,
// `model_0`, `model_01`), which callers must leave untouched.
func ParseSlot(prefix, name string) (Slot, bool) {
	if !HasPrefix(name, prefix) {
		return Slot{}, false
	}

	matches := suffixRegex.FindStringSubmatch(name[len(prefix)+1:])
	if matches == nil {
		return Slot{}, false
	}

	index, err := strconv.Atoi(matches[1])
	if err != nil || index < 1 {
		// Overflow or a zero index.
		return Slot{}, false
	}
	slot := NewSlot(prefix, index)
	if slot.String() != name {
		// Non-canonical spelling such as `model_01`.
		return Slot{}, false
	}
	return slot, true
}

// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

// NamespaceSeparator separates the namespace segments of a node type identifier.
const NamespaceSeparator = "/"

// String serializes the Slot into its canonical `prefix_N` name.
func (s Slot) String() string {
	return s.Prefix + "_" + strconv.Itoa(s.Index)
}

// Name is shorthand for NewSlot(prefix, i).String().
func Name(prefix string, i int) string {
	return NewSlot(prefix, i).String()
}

// BaseName normalizes a node type identifier to its final namespace segment.
// Identifiers without a separator are returned unchanged.
func BaseName(typeID string) string {
	if i := strings.LastIndex(typeID, NamespaceSeparator); i >= 0 {
		return typeID[i+len(NamespaceSeparator):]
	}
	return typeID
}

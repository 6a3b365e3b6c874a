package registry

import (
	"fmt"

	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/nodeid"
)

// identifiersFor returns the normalized identifiers nt would be registered
// under, rejecting any that already belong to another node type. Repeats
// within nt itself (an alias equal to the name) are collapsed.
func (r *Registry) identifiersFor(nt *config.NodeType) ([]string, error) {
	if _, exists := r.types[nt.Name]; exists {
		return nil, fmt.Errorf("%w: '%s'", ErrDuplicateType, nt.Name)
	}

	seen := make(map[string]struct{}, len(nt.Aliases)+1)
	var ids []string
	for _, raw := range append([]string{nt.Name}, nt.Aliases...) {
		id := nodeid.BaseName(raw)
		if id == "" {
			return nil, fmt.Errorf("node type '%s': identifier '%s' is empty once normalized", nt.Name, raw)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if owner, taken := r.byID[id]; taken {
			return nil, fmt.Errorf("%w: '%s' (claimed by '%s' and '%s')", ErrDuplicateType, id, owner.Name, nt.Name)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

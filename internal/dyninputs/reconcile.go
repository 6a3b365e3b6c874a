package dyninputs

import (
	"slices"

	"github.com/vk/dyninputs/internal/node"
	"github.com/vk/dyninputs/internal/nodeid"
)

// Branch names the reconciliation case that was taken.
type Branch string

const (
	// BranchEqual: slot count already matches; widget-only slots are promoted.
	BranchEqual Branch = "equal"
	// BranchShrink: too many slots; the highest-numbered are removed.
	BranchShrink Branch = "shrink"
	// BranchGrow: too few slots; the missing ones are added.
	BranchGrow Branch = "grow"
)

// Result describes what one reconciliation pass did.
type Result struct {
	Target  int
	Branch  Branch
	Added   []string
	Removed []string
}

// Changed reports whether the pass mutated the node.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

type nameSet map[string]struct{}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// apply converges the node onto exactly the slots prefix_1..prefix_target.
// Connector and widget sharing a slot name count as one slot.
func (s *Synchronizer) apply(res *Result) {
	target := s.Target()
	res.Target = target

	socketNames := make(nameSet)
	for _, in := range s.node.Inputs() {
		socketNames[in.Name] = struct{}{}
	}
	widgetNames := make(nameSet)
	for _, w := range s.node.Widgets() {
		widgetNames[w.Name] = struct{}{}
	}

	// Malformed names such as prefix_x are not slots: they are neither
	// counted nor ever removed.
	existing := make(map[string]int)
	for _, names := range []nameSet{socketNames, widgetNames} {
		for name := range names {
			if slot, ok := nodeid.ParseSlot(s.prefix, name); ok {
				existing[name] = slot.Index
			}
		}
	}

	switch {
	case len(existing) == target:
		res.Branch = BranchEqual
		for i := 1; i <= target; i++ {
			name := nodeid.Name(s.prefix, i)
			if widgetNames.has(name) && !socketNames.has(name) {
				s.addInput(name)
				res.Added = append(res.Added, name)
			}
		}

	case len(existing) > target:
		res.Branch = BranchShrink
		indices := make([]int, 0, len(existing))
		for _, i := range existing {
			indices = append(indices, i)
		}
		slices.Sort(indices)
		slices.Reverse(indices)

		for _, i := range indices {
			if len(existing) <= target {
				break
			}
			name := nodeid.Name(s.prefix, i)
			s.removeSlot(name)
			delete(existing, name)
			res.Removed = append(res.Removed, name)
		}

	default:
		res.Branch = BranchGrow
		for i := 1; i <= target; i++ {
			name := nodeid.Name(s.prefix, i)
			if _, ok := existing[name]; ok {
				continue
			}
			s.addInput(name)
			existing[name] = i
			res.Added = append(res.Added, name)
		}
	}
}

func (s *Synchronizer) addInput(name string) {
	var opts *node.SocketOptions
	if s.nodeType.Shape != nil {
		opts = &node.SocketOptions{Shape: s.nodeType.Shape}
	}
	s.node.AddInput(name, s.nodeType.PayloadType, opts)
}

// removeSlot removes the connector and the widget called name, whichever exist.
func (s *Synchronizer) removeSlot(name string) {
	if i := slices.IndexFunc(s.node.Inputs(), func(in *node.Socket) bool { return in.Name == name }); i >= 0 {
		s.node.RemoveInput(i)
	}
	if i := slices.IndexFunc(s.node.Widgets(), func(w *node.Widget) bool { return w.Name == name }); i >= 0 {
		s.node.RemoveWidget(i)
	}
}

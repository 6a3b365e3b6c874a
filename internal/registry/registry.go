package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/nodeid"
)

// ErrDuplicateType is returned when an identifier (name or alias) is claimed
// by two different node types.
var ErrDuplicateType = errors.New("node type identifier already registered")

// Registry holds every registered node type for a single application instance.
type Registry struct {
	// byID maps every normalized identifier (name and aliases) to its entry.
	byID map[string]*config.NodeType
	// types maps canonical names to entries.
	types map[string]*config.NodeType
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byID:  make(map[string]*config.NodeType),
		types: make(map[string]*config.NodeType),
	}
}

// NewWithBuiltins creates a Registry pre-populated with the built-in
// multi-switch node types.
func NewWithBuiltins(ctx context.Context) (*Registry, error) {
	r := New()
	if err := r.PopulateFromModel(ctx, Builtin()); err != nil {
		return nil, fmt.Errorf("registering built-in node types: %w", err)
	}
	return r, nil
}

// Register adds a node type under its name and all of its aliases. The entry
// is copied, so later changes to nt do not leak into the registry.
func (r *Registry) Register(ctx context.Context, nt *config.NodeType) error {
	entry := *nt
	entry.Aliases = slices.Clone(nt.Aliases)
	if entry.Shape != nil {
		shape := *entry.Shape
		entry.Shape = &shape
	}

	ids, err := r.identifiersFor(&entry)
	if err != nil {
		return err
	}

	for _, id := range ids {
		r.byID[id] = &entry
	}
	r.types[entry.Name] = &entry

	ctxlog.FromContext(ctx).Debug("Registering node type.",
		"name", entry.Name,
		"payload_type", entry.PayloadType,
		"prefix", entry.SlotPrefix(),
		"identifiers", len(ids),
	)
	return nil
}

// PopulateFromModel registers every node type of the model, in name order.
func (r *Registry) PopulateFromModel(ctx context.Context, model *config.Model) error {
	if err := model.Validate(); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(model.NodeTypes)) {
		if err := r.Register(ctx, model.NodeTypes[name]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves a node type identifier, namespaced or not, to its
// configuration. The returned value is a copy.
func (r *Registry) Lookup(typeID string) (config.NodeType, bool) {
	nt, ok := r.byID[nodeid.BaseName(typeID)]
	if !ok {
		return config.NodeType{}, false
	}
	return *nt, true
}

// Types returns a copy of every registered node type, sorted by name.
func (r *Registry) Types() []config.NodeType {
	out := make([]config.NodeType, 0, len(r.types))
	for _, name := range slices.Sorted(maps.Keys(r.types)) {
		out = append(out, *r.types[name])
	}
	return out
}

// Len returns the number of registered node types, aliases not counted.
func (r *Registry) Len() int {
	return len(r.types)
}

package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// WildcardType is the payload type tag that accepts any upstream value.
const WildcardType = "*"

// DefaultPrefix names slots when a node type has neither a prefix nor a
// payload type to derive one from.
const DefaultPrefix = "input"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Model is the unified representation of all node type definitions, keyed by
// their canonical name.
type Model struct {
	NodeTypes map[string]*NodeType
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{NodeTypes: make(map[string]*NodeType)}
}

// NodeType is the multi-input configuration of a single node type. It is
// immutable once registered.
type NodeType struct {
	// Name is the canonical node type identifier.
	Name string `validate:"required"`
	// PayloadType is the type tag attached to every created connector.
	PayloadType string
	// Prefix is the stem of the numbered slot names (`prefix_N`).
	Prefix string
	// Aliases are alternative identifiers, e.g. display names.
	Aliases []string `validate:"dive,required"`
	// Shape is an optional rendering hint copied onto created connectors.
	Shape *int `validate:"omitempty,min=0"`
}

// SlotPrefix returns the effective slot prefix: the configured prefix, else
// the lowercased payload type, else DefaultPrefix.
func (n *NodeType) SlotPrefix() string {
	if n.Prefix != "" {
		return n.Prefix
	}
	if n.PayloadType != "" {
		return strings.ToLower(n.PayloadType)
	}
	return DefaultPrefix
}

// Validate checks every node type definition in the model. Definitions are
// visited in name order so the reported error is deterministic.
func (m *Model) Validate() error {
	for _, name := range slices.Sorted(maps.Keys(m.NodeTypes)) {
		nt := m.NodeTypes[name]
		if nt == nil {
			return fmt.Errorf("node type '%s': definition is nil", name)
		}
		if err := validate.Struct(nt); err != nil {
			return fmt.Errorf("node type '%s': %w", name, err)
		}
	}
	return nil
}

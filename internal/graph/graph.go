package graph

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/node"
)

var (
	// ErrUnknownNodeType is returned when instantiating an unregistered type.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrDuplicateNodeType is returned when a type name is registered twice.
	ErrDuplicateNodeType = errors.New("node type already registered")
	// ErrNodeNotFound is returned when a node instance does not exist.
	ErrNodeNotFound = errors.New("node not found")
)

// Graph is the host editor state: registered definitions, extensions and
// live node instances.
type Graph struct {
	mu         sync.RWMutex
	extensions []Extension
	defs       map[string]*NodeDef
	nodes      map[uuid.UUID]*node.Node
	order      []uuid.UUID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		defs:  make(map[string]*NodeDef),
		nodes: make(map[uuid.UUID]*node.Node),
	}
}

// RegisterExtension adds an extension. It only sees definitions registered
// after this call.
func (g *Graph) RegisterExtension(ctx context.Context, ext Extension) {
	g.mu.Lock()
	g.extensions = append(g.extensions, ext)
	g.mu.Unlock()
	ctxlog.FromContext(ctx).Debug("Registered extension.", "extension", ext.Name())
}

// RegisterNodeType runs every extension's BeforeRegisterNodeDef on def, in
// registration order, and then makes the type available.
func (g *Graph) RegisterNodeType(ctx context.Context, def *NodeDef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.defs[def.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateNodeType, def.Name)
	}
	for _, ext := range g.extensions {
		ext.BeforeRegisterNodeDef(ctx, def)
	}
	g.defs[def.Name] = def

	ctxlog.FromContext(ctx).Debug("Registered node type.", "type", def.Name, "instrumented", def.OnNodeCreated != nil)
	return nil
}

// NodeTypes returns the registered type names, sorted.
func (g *Graph) NodeTypes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Sorted(maps.Keys(g.defs))
}

// CreateNode instantiates a node of the given type: default widgets first,
// then default sockets, then the definition's OnNodeCreated callback.
func (g *Graph) CreateNode(ctx context.Context, typeName string) (*node.Node, error) {
	g.mu.Lock()
	def, ok := g.defs[typeName]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownNodeType, typeName)
	}

	n := node.New(def.Name)
	for _, w := range def.Widgets {
		n.AddWidget(w.Kind, w.Name, w.Default, nil)
	}
	for _, s := range def.Inputs {
		n.AddInput(s.Name, s.Type, nil)
	}
	g.nodes[n.ID()] = n
	g.order = append(g.order, n.ID())
	g.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("node_id", n.ID().String(), "node_type", def.Name)
	logger.Debug("Node created.")

	if def.OnNodeCreated != nil {
		def.OnNodeCreated(ctxlog.WithLogger(ctx, logger), n)
	}
	return n, nil
}

// Node returns the live node with the given ID.
func (g *Graph) Node(id uuid.UUID) (*node.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns the live nodes in creation order.
func (g *Graph) Nodes() []*node.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// RemoveNode detaches the node from the graph and runs its destruction hooks.
func (g *Graph) RemoveNode(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	n, ok := g.nodes[id]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	delete(g.nodes, id)
	g.order = slices.DeleteFunc(g.order, func(o uuid.UUID) bool { return o == id })
	g.mu.Unlock()

	n.Remove()
	ctxlog.FromContext(ctx).Debug("Node removed.", "node_id", id.String(), "node_type", n.Type)
	return nil
}

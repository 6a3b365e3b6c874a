package graph

import (
	"context"

	"github.com/vk/dyninputs/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Extension is implemented by editor extensions.
type Extension interface {
	// Name identifies the extension in logs.
	Name() string
	// BeforeRegisterNodeDef may decorate def before it becomes usable.
	BeforeRegisterNodeDef(ctx context.Context, def *NodeDef)
}

// NodeDef is a node type definition: its identifier, the default widgets and
// sockets of a fresh instance, and the per-instance creation callback.
type NodeDef struct {
	// Name is the type identifier, possibly namespaced (`ns/Type`).
	Name    string
	Widgets []WidgetSpec
	Inputs  []SocketSpec
	// OnNodeCreated runs once per instance, after defaults are populated.
	OnNodeCreated func(ctx context.Context, n *node.Node)
}

// WidgetSpec describes a default widget.
type WidgetSpec struct {
	Kind    node.WidgetKind
	Name    string
	Default cty.Value
}

// SocketSpec describes a default input socket.
type SocketSpec struct {
	Name string
	Type string
}

// ChainOnNodeCreated installs fn as def's creation callback, keeping any
// callback installed before; the earlier one runs first.
func (def *NodeDef) ChainOnNodeCreated(fn func(ctx context.Context, n *node.Node)) {
	prev := def.OnNodeCreated
	def.OnNodeCreated = func(ctx context.Context, n *node.Node) {
		if prev != nil {
			prev(ctx, n)
		}
		fn(ctx, n)
	}
}

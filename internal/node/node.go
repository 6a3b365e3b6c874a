// Package node provides the host editor's node primitives: a node instance
// with its ordered input sockets, its ordered widgets and its destruction
// hook. Nodes are owned by the host graph and mutated only from the host's
// control thread.
package node

import (
	"slices"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
)

// Socket is a typed, linkable input connector.
type Socket struct {
	Name string
	Type string
	// Shape is an optional rendering hint; it has no effect on identity.
	Shape *int
	// Link is the ID of the upstream node feeding this socket, empty when
	// the socket is not connected.
	Link string
	// Widget is the same-named placeholder widget this socket was promoted
	// from, if any.
	Widget *Widget
}

// Connected reports whether a link is attached to the socket.
func (s *Socket) Connected() bool {
	return s.Link != ""
}

// SocketOptions carries the optional attributes of a new socket.
type SocketOptions struct {
	Shape *int
}

// WidgetKind distinguishes the UI controls a node can carry.
type WidgetKind string

const (
	// KindNumber is a numeric counter control.
	KindNumber WidgetKind = "number"
	// KindButton is a push button; its Value is always null.
	KindButton WidgetKind = "button"
	// KindToggle is a boolean switch.
	KindToggle WidgetKind = "toggle"
	// KindText is a free-form text field.
	KindText WidgetKind = "text"
)

// Widget is a named UI control. Values are dynamically typed.
type Widget struct {
	Name     string
	Kind     WidgetKind
	Value    cty.Value
	Callback func()
}

// Activate invokes the widget's callback, as a click on a button would.
func (w *Widget) Activate() {
	if w.Callback != nil {
		w.Callback()
	}
}

// Node is a single node instance on the host graph.
type Node struct {
	id   uuid.UUID
	Type string

	inputs    []*Socket
	widgets   []*Widget
	onRemoved func()
	removed   bool
}

// New creates an empty node of the given type with a fresh instance ID.
func New(typeName string) *Node {
	return &Node{id: uuid.New(), Type: typeName}
}

// ID returns the node's unique instance identifier.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Inputs returns a snapshot of the node's sockets, in declaration order.
func (n *Node) Inputs() []*Socket {
	return slices.Clone(n.inputs)
}

// Widgets returns a snapshot of the node's widgets, in declaration order.
func (n *Node) Widgets() []*Widget {
	return slices.Clone(n.widgets)
}

// AddInput appends a new socket. If a widget of the same name exists, the
// socket takes it over as its placeholder instead of the node carrying two
// unrelated entries for one slot.
func (n *Node) AddInput(name, typ string, opts *SocketOptions) *Socket {
	s := &Socket{Name: name, Type: typ}
	if opts != nil && opts.Shape != nil {
		shape := *opts.Shape
		s.Shape = &shape
	}
	if i := n.WidgetIndex(name); i >= 0 {
		s.Widget = n.widgets[i]
	}
	n.inputs = append(n.inputs, s)
	return s
}

// RemoveInput removes the socket at index i, dropping any link it carries.
// Out-of-range indices are ignored.
func (n *Node) RemoveInput(i int) {
	if i < 0 || i >= len(n.inputs) {
		return
	}
	n.inputs = slices.Delete(n.inputs, i, i+1)
}

// InputIndex returns the index of the socket called name, or -1.
func (n *Node) InputIndex(name string) int {
	return slices.IndexFunc(n.inputs, func(s *Socket) bool { return s.Name == name })
}

// Input returns the socket called name.
func (n *Node) Input(name string) (*Socket, bool) {
	if i := n.InputIndex(name); i >= 0 {
		return n.inputs[i], true
	}
	return nil, false
}

// Connect links the socket called name to the upstream node from. It
// returns false when no such socket exists.
func (n *Node) Connect(name, from string) bool {
	s, ok := n.Input(name)
	if !ok {
		return false
	}
	s.Link = from
	return true
}

// AddWidget appends a widget and returns it.
func (n *Node) AddWidget(kind WidgetKind, name string, value cty.Value, callback func()) *Widget {
	if kind == KindButton {
		value = cty.NullVal(cty.DynamicPseudoType)
	}
	w := &Widget{Name: name, Kind: kind, Value: value, Callback: callback}
	n.widgets = append(n.widgets, w)
	return w
}

// RemoveWidget removes the widget at index i. Out-of-range indices are ignored.
func (n *Node) RemoveWidget(i int) {
	if i < 0 || i >= len(n.widgets) {
		return
	}
	n.widgets = slices.Delete(n.widgets, i, i+1)
}

// WidgetIndex returns the index of the widget called name, or -1.
func (n *Node) WidgetIndex(name string) int {
	return slices.IndexFunc(n.widgets, func(w *Widget) bool { return w.Name == name })
}

// Widget returns the widget called name.
func (n *Node) Widget(name string) (*Widget, bool) {
	if i := n.WidgetIndex(name); i >= 0 {
		return n.widgets[i], true
	}
	return nil, false
}

// SetWidgetValue sets the value of the widget called name, as a user edit
// would. It returns false when no such widget exists.
func (n *Node) SetWidgetValue(name string, value cty.Value) bool {
	w, ok := n.Widget(name)
	if !ok {
		return false
	}
	w.Value = value
	return true
}

// ChainOnRemoved installs fn as the node's destruction hook. The hook that
// was installed before keeps running, after fn.
func (n *Node) ChainOnRemoved(fn func()) {
	prev := n.onRemoved
	n.onRemoved = func() {
		fn()
		if prev != nil {
			prev()
		}
	}
}

// Remove runs the destruction hook chain. Only the first call has an effect.
func (n *Node) Remove() {
	if n.removed {
		return
	}
	n.removed = true
	if n.onRemoved != nil {
		n.onRemoved()
	}
}

// Removed reports whether Remove has been called.
func (n *Node) Removed() bool {
	return n.removed
}

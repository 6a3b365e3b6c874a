// Package graph is the in-memory host editor: it owns node type definitions
// and node instances, and exposes the two extension entry points the dynamic
// input extension relies on.
//
// # Extension contract
//
//   - BeforeRegisterNodeDef is called once per node type definition, before
//     the type can be instantiated. Extensions may install an OnNodeCreated
//     callback on the definition.
//   - OnNodeCreated is called once per node instance, after the host has
//     populated the node's default sockets and widgets.
//
// # Threading
//
// Like the editor it models, the graph is driven from a single control
// thread (see the scheduler package). The node maps are guarded so that
// read-only inspection from other goroutines is safe, but nodes themselves
// must only be mutated on the control thread.
package graph

package dyninputs

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/graph"
	"github.com/vk/dyninputs/internal/node"
	"github.com/vk/dyninputs/internal/scheduler"
)

// ExtensionName identifies the extension to the host.
const ExtensionName = "dyninputs.DynamicInputs"

// TypeLookup resolves node type identifiers; *registry.Registry implements it.
type TypeLookup interface {
	Lookup(typeID string) (config.NodeType, bool)
}

// Extension is the host-facing entry point: it decides per node type whether
// instances get a Synchronizer, and installs one on each new instance.
type Extension struct {
	types TypeLookup
	sched scheduler.Scheduler
	opts  Options

	mu     sync.Mutex
	active map[uuid.UUID]*Synchronizer
}

var _ graph.Extension = (*Extension)(nil)

// NewExtension creates the extension.
func NewExtension(types TypeLookup, sched scheduler.Scheduler, opts Options) *Extension {
	return &Extension{
		types:  types,
		sched:  sched,
		opts:   opts.withDefaults(),
		active: make(map[uuid.UUID]*Synchronizer),
	}
}

// Name implements graph.Extension.
func (e *Extension) Name() string {
	return ExtensionName
}

// BeforeRegisterNodeDef implements graph.Extension. Definitions whose type
// is not in the registry are left untouched.
func (e *Extension) BeforeRegisterNodeDef(ctx context.Context, def *graph.NodeDef) {
	if def == nil || def.Name == "" {
		return
	}
	logger := ctxlog.FromContext(ctx)

	nt, ok := e.types.Lookup(def.Name)
	if !ok {
		logger.Debug("Node type has no dynamic inputs.", "type", def.Name)
		return
	}

	logger.Debug("Instrumenting node type.", "type", def.Name, "config", nt.Name, "prefix", nt.SlotPrefix())
	def.ChainOnNodeCreated(func(ctx context.Context, n *node.Node) {
		e.attach(ctx, n, nt)
	})
}

func (e *Extension) attach(ctx context.Context, n *node.Node, nt config.NodeType) {
	s := NewSynchronizer(ctx, n, nt, e.sched, e.opts)

	id := n.ID()
	e.mu.Lock()
	e.active[id] = s
	e.mu.Unlock()
	n.ChainOnRemoved(func() {
		e.mu.Lock()
		delete(e.active, id)
		e.mu.Unlock()
	})

	s.Start()
}

// Synchronizer returns the Synchronizer attached to the live node id.
func (e *Extension) Synchronizer(id uuid.UUID) (*Synchronizer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.active[id]
	return s, ok
}

// Active returns the number of live Synchronizers.
func (e *Extension) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

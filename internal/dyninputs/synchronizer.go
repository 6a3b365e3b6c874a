package dyninputs

import (
	"context"
	"log/slog"
	"time"

	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/node"
	"github.com/vk/dyninputs/internal/scheduler"
	"github.com/zclconf/go-cty/cty"
)

const (
	// CounterWidgetName is the widget holding the desired slot count.
	CounterWidgetName = "inputcount"
	// UpdateButtonLabel labels the button that forces a reconciliation.
	UpdateButtonLabel = "Update inputs"

	// DefaultInitialDelay leaves the host time to populate default widgets
	// before the first reconciliation.
	DefaultInitialDelay = 80 * time.Millisecond
	// DefaultPollInterval is the counter sampling period.
	DefaultPollInterval = 200 * time.Millisecond
)

// HostNode is the part of the host's node API a Synchronizer drives.
// *node.Node implements it.
type HostNode interface {
	Inputs() []*node.Socket
	Widgets() []*node.Widget
	AddInput(name, typ string, opts *node.SocketOptions) *node.Socket
	RemoveInput(i int)
	RemoveWidget(i int)
	AddWidget(kind node.WidgetKind, name string, value cty.Value, callback func()) *node.Widget
	ChainOnRemoved(fn func())
}

// Options tunes the timing of a Synchronizer. Zero values select the defaults.
type Options struct {
	InitialDelay time.Duration
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// trigger names what caused a reconciliation, for logs.
type trigger string

const (
	triggerInitial trigger = "initial"
	triggerPoll    trigger = "poll"
	triggerButton  trigger = "button"
	triggerDirect  trigger = "direct"
)

// Synchronizer owns the slot reconciliation of one node instance. All of its
// methods must be called on the host's control thread.
type Synchronizer struct {
	node     HostNode
	nodeType config.NodeType
	prefix   string
	sched    scheduler.Scheduler
	opts     Options
	logger   *slog.Logger

	// lastSeen is the last counter value the poll acted upon.
	lastSeen cty.Value
	hasLast  bool

	initial scheduler.Handle
	poll    scheduler.Handle
	started bool
	stopped bool
}

// NewSynchronizer creates a Synchronizer for n. Nothing is scheduled until
// Start is called.
func NewSynchronizer(ctx context.Context, n HostNode, nt config.NodeType, sched scheduler.Scheduler, opts Options) *Synchronizer {
	prefix := nt.SlotPrefix()
	return &Synchronizer{
		node:     n,
		nodeType: nt,
		prefix:   prefix,
		sched:    sched,
		opts:     opts.withDefaults(),
		logger:   ctxlog.FromContext(ctx).With("prefix", prefix),
	}
}

// Prefix returns the slot prefix this Synchronizer manages.
func (s *Synchronizer) Prefix() string {
	return s.prefix
}

// Start attaches the "Update inputs" button, schedules the deferred first
// reconciliation and the counter poll, and chains Stop in front of the
// node's existing destruction hook. Calling Start twice has no effect.
func (s *Synchronizer) Start() {
	if s.started {
		return
	}
	s.started = true

	s.node.AddWidget(node.KindButton, UpdateButtonLabel, cty.NilVal, func() {
		s.reconcile(triggerButton)
	})
	s.initial = s.sched.AfterFunc(s.opts.InitialDelay, func() {
		s.reconcile(triggerInitial)
	})
	s.poll = s.sched.Every(s.opts.PollInterval, s.check)
	s.node.ChainOnRemoved(s.Stop)

	s.logger.Debug("Synchronizer started.",
		"initial_delay", s.opts.InitialDelay,
		"poll_interval", s.opts.PollInterval,
	)
}

// Stop cancels the pending first reconciliation and the counter poll. After
// Stop returns, no scheduled callback of this Synchronizer runs again.
func (s *Synchronizer) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.initial != nil {
		s.initial.Cancel()
	}
	if s.poll != nil {
		s.poll.Cancel()
	}
	s.logger.Debug("Synchronizer stopped.")
}

// Stopped reports whether Stop has been called.
func (s *Synchronizer) Stopped() bool {
	return s.stopped
}

// Target reads the desired slot count from the counter widget; a missing
// counter means zero.
func (s *Synchronizer) Target() int {
	w := s.counter()
	if w == nil {
		return 0
	}
	return targetFromValue(w.Value)
}

// Reconcile runs one reconciliation pass immediately.
func (s *Synchronizer) Reconcile() Result {
	return s.reconcile(triggerDirect)
}

func (s *Synchronizer) counter() *node.Widget {
	for _, w := range s.node.Widgets() {
		if w.Name == CounterWidgetName {
			return w
		}
	}
	return nil
}

// check is the poll callback: it reconciles only when the counter value
// differs from the last one acted upon.
func (s *Synchronizer) check() {
	if s.stopped {
		return
	}
	w := s.counter()
	if w == nil {
		return
	}
	if s.hasLast && sameValue(w.Value, s.lastSeen) {
		return
	}
	s.lastSeen, s.hasLast = w.Value, true
	s.reconcile(triggerPoll)
}

// reconcile runs a guarded pass: a panic raised by the host while adding or
// removing an entry ends the pass but never escapes it.
func (s *Synchronizer) reconcile(t trigger) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Reconciliation aborted.", "trigger", t, "panic", r)
		}
	}()

	s.apply(&res)
	if res.Changed() {
		s.logger.Debug("Reconciled node inputs.",
			"trigger", t,
			"branch", res.Branch,
			"target", res.Target,
			"added", res.Added,
			"removed", res.Removed,
		)
	}
	return res
}

package cleanup

import (
	"context"

	"github.com/vk/dyninputs/internal/ctxlog"
)

// Source is an event stream the relay can subscribe to.
type Source interface {
	// On registers fn for every emission of event.
	On(event string, fn func(args ...any))
	Close() error
}

// Attach subscribes the relay to EventName on src. Relay failures are
// logged and never propagate to the source.
func (r *Relay) Attach(ctx context.Context, src Source) {
	logger := ctxlog.FromContext(ctx)
	src.On(EventName, func(args ...any) {
		if len(args) == 0 {
			logger.Debug("Ignoring event without payload.", "event", EventName)
			return
		}
		// Errors are already logged by Handle.
		_ = r.Handle(ctx, args[0])
	})
	logger.Debug("Cleanup relay attached.", "event", EventName, "free_url", r.freeURL)
}

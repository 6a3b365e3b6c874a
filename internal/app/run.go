package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vk/dyninputs/internal/cleanup"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/dyninputs"
	"github.com/vk/dyninputs/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Run starts the event loop and the optional health check server and
// cleanup relay, then drives a session on one node of the configured type:
// every count is applied to the counter widget in turn and the node's inputs
// are printed once the poll has reacted. The node is removed at the end.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	loopCtx, stopLoop := context.WithCancel(ctx)
	go a.loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-a.loop.Done()
	}()

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
		defer func() {
			if cerr := a.closeHealthcheckServer(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	if a.config.EventsURL != "" {
		stop, err := a.startCleanupRelay(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	if err := a.runSession(ctx); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) startCleanupRelay(ctx context.Context) (func(), error) {
	src, err := a.dialEvents(ctx, a.config.EventsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event stream: %w", err)
	}
	relay := cleanup.NewRelay(a.config.FreeURL)
	relay.Attach(ctx, src)
	a.logger.Info("Cleanup relay started.", "events_url", a.config.EventsURL, "free_url", a.config.FreeURL)

	return func() {
		if err := src.Close(); err != nil {
			a.logger.Warn("Failed to close event stream.", "error", err)
		}
		if err := relay.Close(); err != nil {
			a.logger.Warn("Failed to close cleanup relay.", "error", err)
		}
	}, nil
}

// settleTime is how long the session waits for the synchronizer to react to
// a counter change.
func (a *App) settleTime() time.Duration {
	poll := a.config.PollInterval
	if poll <= 0 {
		poll = dyninputs.DefaultPollInterval
	}
	initial := a.config.InitialDelay
	if initial <= 0 {
		initial = dyninputs.DefaultInitialDelay
	}
	return initial + 2*poll
}

func (a *App) runSession(ctx context.Context) error {
	typeName := a.config.NodeType
	if nt, ok := a.registry.Lookup(typeName); ok {
		typeName = nt.Name
	}

	var id uuid.UUID
	var createErr error
	if err := a.loop.Do(ctx, func() {
		var n *node.Node
		n, createErr = a.graph.CreateNode(ctx, typeName)
		if createErr == nil {
			id = n.ID()
		}
	}); err != nil {
		return err
	}
	if createErr != nil {
		return fmt.Errorf("failed to create node: %w", createErr)
	}
	a.logger.Info("Node created.", "node_type", typeName, "node_id", id.String())

	defer func() {
		// The loop may already be gone if ctx was cancelled.
		_ = a.loop.Do(context.Background(), func() {
			if err := a.graph.RemoveNode(ctx, id); err != nil {
				a.logger.Warn("Failed to remove node.", "error", err)
			}
		})
	}()

	if err := a.wait(ctx, a.settleTime()); err != nil {
		return err
	}
	if err := a.printInputs(ctx, id); err != nil {
		return err
	}

	for _, count := range a.config.Counts {
		if err := a.loop.Do(ctx, func() {
			if n, ok := a.graph.Node(id); ok {
				n.SetWidgetValue(dyninputs.CounterWidgetName, cty.NumberIntVal(int64(count)))
			}
		}); err != nil {
			return err
		}
		if err := a.wait(ctx, a.settleTime()); err != nil {
			return err
		}
		if err := a.printInputs(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// printInputs writes one line describing the node's counter and inputs.
func (a *App) printInputs(ctx context.Context, id uuid.UUID) error {
	var line string
	err := a.loop.Do(ctx, func() {
		n, ok := a.graph.Node(id)
		if !ok {
			return
		}
		counter := "-"
		if w, ok := n.Widget(dyninputs.CounterWidgetName); ok && w.Value.IsKnown() && !w.Value.IsNull() && w.Value.Type() == cty.Number {
			counter = w.Value.AsBigFloat().Text('f', -1)
		}
		names := make([]string, 0, len(n.Inputs()))
		for _, in := range n.Inputs() {
			names = append(names, in.Name)
		}
		line = fmt.Sprintf("%s %s=%s inputs=[%s]", n.Type, dyninputs.CounterWidgetName, counter, strings.Join(names, " "))
	})
	if err != nil {
		return err
	}
	if line == "" {
		return errors.New("node disappeared during the session")
	}
	fmt.Fprintln(a.outW, line)
	return nil
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/dyninputs/internal/ctxlog"
)

// ErrLoopClosed is returned when work is submitted to a loop that has stopped.
var ErrLoopClosed = errors.New("event loop is closed")

// Loop is a single-goroutine event loop. Callbacks posted to it run serially
// in submission order.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled. A panicking callback
// is logged and does not stop the loop. Callbacks still queued when ctx is
// cancelled are dropped.
func (l *Loop) Run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Event loop started.")
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
		logger.Debug("Event loop stopped.")
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			if ctx.Err() != nil {
				return
			}
			l.runOne(ctx, fn)
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

func (l *Loop) runOne(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Event loop callback panicked.", "panic", r)
		}
	}()
	fn()
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn to run on the loop. It never blocks, and is safe to call
// from the loop itself. It returns false when the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loopTimer is the Handle of a Loop timer. cancelled is only ever read on
// the loop goroutine, right before the callback would run.
type loopTimer struct {
	cancelled atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
}

func newLoopTimer() *loopTimer {
	return &loopTimer{stop: make(chan struct{})}
}

// Cancel implements Handle.
func (t *loopTimer) Cancel() {
	t.cancelled.Store(true)
	t.stopOnce.Do(func() { close(t.stop) })
}

// AfterFunc implements Scheduler.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	t := newLoopTimer()
	timer := time.NewTimer(d)

	go func() {
		defer timer.Stop()
		select {
		case <-timer.C:
			l.Post(func() {
				if !t.cancelled.Load() {
					fn()
				}
			})
		case <-t.stop:
		case <-l.done:
		}
	}()
	return t
}

// Every implements Scheduler. Ticks that arrive while the previous tick is
// still queued on the loop are dropped, so a busy loop never accumulates a
// backlog of checks.
func (l *Loop) Every(d time.Duration, fn func()) Handle {
	t := newLoopTimer()
	ticker := time.NewTicker(d)
	var queued atomic.Bool

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !queued.CompareAndSwap(false, true) {
					continue
				}
				l.Post(func() {
					queued.Store(false)
					if !t.cancelled.Load() {
						fn()
					}
				})
			case <-t.stop:
				return
			case <-l.done:
				return
			}
		}
	}()
	return t
}

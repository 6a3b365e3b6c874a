package scheduler

import "time"

// Handle controls a scheduled callback.
type Handle interface {
	// Cancel stops the callback. It is idempotent.
	Cancel()
}

// Scheduler schedules callbacks onto the host's control thread.
type Scheduler interface {
	// AfterFunc runs fn once, after d.
	AfterFunc(d time.Duration, fn func()) Handle
	// Every runs fn repeatedly, every d, until cancelled.
	Every(d time.Duration, fn func()) Handle
}

package scheduler

import "time"

// Manual is a Scheduler driven by virtual time. Callbacks run synchronously
// inside Advance, on the caller's goroutine; Manual is not safe for
// concurrent use.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	due       time.Duration
	period    time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// Cancel implements Handle.
func (t *manualTimer) Cancel() {
	t.cancelled = true
}

// NewManual creates a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

// Every implements Scheduler. A non-positive period is treated as one nanosecond.
func (m *Manual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, period time.Duration, fn func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now + d, period: period, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves virtual time forward by d, running every callback that
// comes due, in due-time order (ties in scheduling order). Callbacks may
// schedule or cancel timers; those changes are honoured within the same
// Advance.
func (m *Manual) Advance(d time.Duration) {
	end := m.now + d
	for {
		t := m.next(end)
		if t == nil {
			break
		}
		m.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.cancelled = true
		}
		t.fn()
	}
	m.now = end
	m.compact()
}

// Pending returns the number of live (not cancelled, not fired) timers.
func (m *Manual) Pending() int {
	m.compact()
	return len(m.timers)
}

func (m *Manual) next(end time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.cancelled || t.due > end {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	clear(m.timers[len(live):])
	m.timers = live
}

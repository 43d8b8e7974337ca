package clock

import (
	"sync"
	"time"
)

// Manual is a controllable Clock and Scheduler for tests. Time only moves
// through Advance, which fires every due timer in order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every implements Scheduler. The first firing is one interval from now.
func (m *Manual) Every(interval time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{interval: interval, next: m.now.Add(interval), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves time forward by d, firing timers as their deadlines pass.
// Callbacks run without the clock lock held and may stop timers.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		due := m.nextDueLocked(target)
		if due == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next = due.next.Add(due.interval)
		fn := due.fn
		m.mu.Unlock()
		fn()
	}
}

// Tick advances by a single interval of the earliest active timer, firing it
// once. It is a no-op when no timer is active.
func (m *Manual) Tick() {
	m.mu.Lock()
	due := m.nextDueLocked(time.Time{})
	if due == nil {
		m.mu.Unlock()
		return
	}
	d := due.next.Sub(m.now)
	m.mu.Unlock()
	m.Advance(d)
}

// Active reports the number of timers that have not been stopped.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// nextDueLocked returns the active timer with the earliest deadline not after
// limit. A zero limit means no limit.
func (m *Manual) nextDueLocked(limit time.Time) *manualTimer {
	var best *manualTimer
	live := m.timers[:0]
	for _, t := range m.timers {
		if t.isStopped() {
			continue
		}
		live = append(live, t)
		if !limit.IsZero() && t.next.After(limit) {
			continue
		}
		if best == nil || t.next.Before(best.next) {
			best = t
		}
	}
	m.timers = live
	return best
}

type manualTimer struct {
	interval time.Duration
	next     time.Time
	fn       func()

	mu      sync.Mutex
	stopped bool
}

func (t *manualTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *manualTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Package clock provides time sources and repeating-callback scheduling.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time. Readings carry the monotonic clock when
// taken from the system.
type Clock interface {
	Now() time.Time
}

// Timer is a handle to a repeating callback. Stop is idempotent.
type Timer interface {
	Stop()
}

// Scheduler runs fn every interval until the returned Timer is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// System is the real monotonic clock.
type System struct{}

// Now returns time.Now.
func (System) Now() time.Time {
	return time.Now()
}

// Poster hands a callback to the goroutine that owns the state it mutates.
type Poster func(fn func())

// TickerScheduler fires callbacks from a time.Ticker goroutine and routes
// them through a Poster, so the callback itself runs on the owner's loop.
type TickerScheduler struct {
	post Poster
}

// NewTickerScheduler returns a scheduler that delivers ticks through post.
// A nil post runs callbacks directly on the ticker goroutine.
func NewTickerScheduler(post Poster) *TickerScheduler {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &TickerScheduler{post: post}
}

// Every implements Scheduler.
func (s *TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				s.post(func() {
					if t.stopped() {
						return
					}
					fn()
				})
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	mu     sync.Mutex
	halted bool
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.mu.Lock()
		t.halted = true
		t.mu.Unlock()
		t.ticker.Stop()
		close(t.done)
	})
}

// stopped guards against ticks already queued on the owner's loop when Stop ran.
func (t *tickerTimer) stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.halted
}

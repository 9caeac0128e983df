// Package ratelimit implements the per-connection sliding-window frame
// counter.
package ratelimit

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Limiter counts accepted frames inside a sliding time window. Each
// Limiter is private to one connection and is not safe for concurrent
// use; a connection's read loop is the only caller.
type Limiter struct {
	clock  clock.Clock
	limit  int
	window time.Duration
	times  []time.Time
}

// New creates a Limiter allowing limit frames per window.
func New(limit int, window time.Duration) *Limiter {
	return NewWithClock(limit, window, clock.New())
}

// NewWithClock creates a Limiter on an injected clock, for tests.
func NewWithClock(limit int, window time.Duration, c clock.Clock) *Limiter {
	return &Limiter{
		clock:  c,
		limit:  limit,
		window: window,
		times:  make([]time.Time, 0, limit+1),
	}
}

// Allow records one inbound frame and reports whether it fits the
// window. The frame's own timestamp counts: with limit 3, the 4th
// frame inside one window returns false.
func (l *Limiter) Allow() bool {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	kept := l.times[:0]
	for _, ts := range l.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.times = append(kept, now)

	return len(l.times) <= l.limit
}

// Len returns the number of frames currently inside the window.
func (l *Limiter) Len() int {
	return len(l.times)
}

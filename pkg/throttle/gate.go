// Package throttle provides per-event-kind delivery rate limiting for the
// real-time stream. A Gate decides, at arrival time, whether an event is
// passed to the consumer or silently discarded; it never queues, delays,
// or reorders.
package throttle

import "time"

// Gate is a minimal rate limiter for a single logical stream of events.
// The first call always passes. A later call passes when at least the
// configured interval has elapsed since the last accepted call; the
// boundary is inclusive. An interval of zero or less disables limiting
// entirely and the clock is never read.
//
// A Gate is owned by exactly one subscription and is called only from the
// session's delivery goroutine. It is not safe for concurrent use.
type Gate struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewGate returns a Gate with the given minimum interval between accepted
// events.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval, now: time.Now}
}

// NewGateAt is NewGate with an injectable clock.
func NewGateAt(interval time.Duration, now func() time.Time) *Gate {
	return &Gate{interval: interval, now: now}
}

// Allow reports whether an event arriving now should be delivered. On
// acceptance the gate's last-accepted instant advances; on rejection no
// state changes.
func (g *Gate) Allow() bool {
	if g.interval <= 0 {
		return true
	}

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Interval returns the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

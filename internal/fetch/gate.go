package fetch

import (
	"context"
	"sync"
	"time"
)

// Gate enforces a minimum spacing between outbound requests to a single
// origin, shared by every caller in the process. It is a courtesy delay for
// anti-scraping friendliness, not a correctness-critical lock: concurrent
// callers serialize by waiting out the remainder of the interval.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewGate returns a gate with the given minimum inter-request interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Wait blocks until this caller's slot arrives or the context is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	wait := time.Duration(0)
	if g.next.After(now) {
		wait = g.next.Sub(now)
	}
	g.next = now.Add(wait + g.interval)
	g.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

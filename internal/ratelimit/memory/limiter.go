package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vedran77/chirp/internal/ratelimit"
)

// Limiter keeps per-key event timestamps in process memory. It serves local
// development and tests; a multi-instance deployment needs the redis limiter.
type Limiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		events: make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// SetClock overrides the time source for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	kept := l.events[key][:0]
	for _, ts := range l.events[key] {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	l.events[key] = kept

	if len(kept) >= l.limit {
		return ratelimit.Decision{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   kept[0].Add(l.window),
		}, nil
	}

	l.events[key] = append(kept, now)
	return ratelimit.Decision{
		Allowed:   true,
		Remaining: l.limit - len(kept) - 1,
		ResetAt:   now.Add(l.window),
	}, nil
}

package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter answers whether an action keyed by an author id is allowed right
// now under a sliding window policy fixed at construction.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vedran77/chirp/internal/ratelimit"
)

// Limiter is a sliding-window limiter over a redis sorted set per key.
// Scores are millisecond timestamps, which float64 represents exactly;
// members carry a unique suffix so same-instant events never collapse into
// one entry. Entries older than the window are trimmed on every check.
type Limiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewLimiter(client *goredis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (l *Limiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixMilli(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit check for %q: %w", key, err)
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		resetAt := now.Add(l.window)
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(l.window)
		}
		return ratelimit.Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	record := l.client.TxPipeline()
	record.ZAdd(ctx, redisKey, goredis.Z{
		Score:  eventScore(now),
		Member: eventMember(now),
	})
	record.Expire(ctx, redisKey, l.window)
	if _, err := record.Exec(ctx); err != nil {
		return ratelimit.Decision{}, fmt.Errorf("rate limit record for %q: %w", key, err)
	}

	return ratelimit.Decision{
		Allowed:   true,
		Remaining: l.limit - count - 1,
		ResetAt:   now.Add(l.window),
	}, nil
}

// eventScore is the sorted-set score for an event. Milliseconds stay within
// float64's exact integer range, where nanoseconds would not.
func eventScore(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// eventMember names a sorted-set entry. The random suffix keeps two events
// in the same millisecond from overwriting each other.
func eventMember(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + ":" + uuid.NewString()
}

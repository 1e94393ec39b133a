package directory

import (
	"context"

	"github.com/vedran77/chirp/internal/domain"
)

// MaxBatchSize is the largest number of ids a single lookup may carry.
const MaxBatchSize = 100

// Client resolves opaque author ids against the external user directory.
// The result map may hold fewer entries than ids requested; callers decide
// what a missing profile means.
type Client interface {
	LookupMany(ctx context.Context, ids []string) (map[string]domain.AuthorProfile, error)
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vedran77/chirp/internal/domain"
)

// PostRepo is an in-process post store used for local development and tests.
type PostRepo struct {
	mu    sync.RWMutex
	posts []domain.Post
	now   func() time.Time
}

func NewPostRepo() *PostRepo {
	return &PostRepo{now: time.Now}
}

// SetClock overrides the time source for tests.
func (r *PostRepo) SetClock(now func() time.Time) {
	r.now = now
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.CreatedAt = r.now().UTC()
	r.posts = append(r.posts, *post)
	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.posts {
		if r.posts[i].ID == id {
			post := r.posts[i]
			return &post, nil
		}
	}
	return nil, nil
}

func (r *PostRepo) List(ctx context.Context, authorID *string, limit int) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Walk newest-insertion-first so the stable sort keeps insertion order
	// as the tie-break for equal timestamps.
	var posts []domain.Post
	for i := len(r.posts) - 1; i >= 0; i-- {
		if authorID != nil && r.posts[i].AuthorID != *authorID {
			continue
		}
		posts = append(posts, r.posts[i])
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

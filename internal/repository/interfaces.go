package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/vedran77/chirp/internal/domain"
)

// PostRepository is the durable post store. Posts are append-only: there is
// no update or delete in the write surface.
type PostRepository interface {
	// Create persists the post and fills in its store-assigned CreatedAt.
	Create(ctx context.Context, post *domain.Post) error
	// GetByID returns (nil, nil) when no post has the given id.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	// List returns at most limit posts ordered by created_at descending,
	// ties broken by insertion order. A non-nil authorID filters to that
	// author's posts.
	List(ctx context.Context, authorID *string, limit int) ([]domain.Post, error)
}

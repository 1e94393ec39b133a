package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vedran77/chirp/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	// created_at is assigned by the database so feed order reflects write
	// completion order.
	query := `
		INSERT INTO posts (id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, query, post.ID, post.AuthorID, post.Content).Scan(&post.CreatedAt)
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT id, author_id, content, created_at
		FROM posts
		WHERE id = $1`
	var post domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepo) List(ctx context.Context, authorID *string, limit int) ([]domain.Post, error) {
	var rows pgx.Rows
	var err error

	if authorID != nil {
		query := `
			SELECT id, author_id, content, created_at
			FROM posts
			WHERE author_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2`
		rows, err = r.pool.Query(ctx, query, *authorID, limit)
	} else {
		query := `
			SELECT id, author_id, content, created_at
			FROM posts
			ORDER BY created_at DESC, seq DESC
			LIMIT $1`
		rows, err = r.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Content, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

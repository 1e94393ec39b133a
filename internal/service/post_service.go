package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vedran77/chirp/internal/directory"
	"github.com/vedran77/chirp/internal/domain"
	"github.com/vedran77/chirp/internal/ratelimit"
	"github.com/vedran77/chirp/internal/repository"
	"github.com/vedran77/chirp/pkg/validator"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrUnauthenticated = errors.New("an authenticated author is required")
	ErrRateLimited     = errors.New("post rate limit exceeded")
	// ErrAuthorNotFound signals a referential-integrity gap between the post
	// store and the user directory. It is a server fault, never hidden by
	// dropping the post from a feed.
	ErrAuthorNotFound = errors.New("author for post not found")
)

// ValidationError carries the field-level messages produced by content
// validation so the transport layer can surface them verbatim.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post: %v", map[string]string(e.Fields))
}

// FeedLimit caps every read path. It also keeps the distinct-author set of
// any result inside a single directory batch.
const FeedLimit = 100

// Notifier broadcasts newly created posts to connected feed clients.
type Notifier interface {
	NotifyNewPost(post *domain.Post)
}

type PostService struct {
	postRepo  repository.PostRepository
	directory directory.Client
	limiter   ratelimit.Limiter
	notifier  Notifier
}

func NewPostService(
	postRepo repository.PostRepository,
	dir directory.Client,
	limiter ratelimit.Limiter,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		directory: dir,
		limiter:   limiter,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *PostService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create validates the content, checks the author's rate limit and persists
// exactly one post. Nothing is written on any failure path. The returned
// post is not author-enriched; enrichment happens only on reads.
func (s *PostService) Create(ctx context.Context, authorID, content string) (*domain.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}

	if errs := validator.ValidatePost(content); errs.HasErrors() {
		return nil, &ValidationError{Fields: errs}
	}

	decision, err := s.limiter.Allow(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("checking rate limit: %w", err)
	}
	if !decision.Allowed {
		return nil, ErrRateLimited
	}

	post := &domain.Post{
		ID:       uuid.New(),
		AuthorID: authorID,
		Content:  content,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewPost(post)
	}

	return post, nil
}

// GetByID resolves a single post and its author.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading post: %w", err)
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	views, err := s.withAuthors(ctx, []domain.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetAll returns the newest posts across all authors, most recent first.
func (s *PostService) GetAll(ctx context.Context) ([]domain.PostView, error) {
	posts, err := s.postRepo.List(ctx, nil, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return s.withAuthors(ctx, posts)
}

// GetByAuthor returns the newest posts by one author, most recent first.
func (s *PostService) GetByAuthor(ctx context.Context, authorID string) ([]domain.PostView, error) {
	posts, err := s.postRepo.List(ctx, &authorID, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("listing posts by author: %w", err)
	}
	return s.withAuthors(ctx, posts)
}

// withAuthors joins posts with their author profiles using one batched
// directory lookup per call, never one lookup per post.
func (s *PostService) withAuthors(ctx context.Context, posts []domain.Post) ([]domain.PostView, error) {
	views := make([]domain.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		if _, ok := seen[post.AuthorID]; ok {
			continue
		}
		seen[post.AuthorID] = struct{}{}
		ids = append(ids, post.AuthorID)
	}

	profiles, err := s.directory.LookupMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving authors: %w", err)
	}

	for _, post := range posts {
		author, ok := profiles[post.AuthorID]
		if !ok {
			return nil, fmt.Errorf("post %s, author %s: %w", post.ID, post.AuthorID, ErrAuthorNotFound)
		}
		views = append(views, domain.PostView{Post: post, Author: author})
	}
	return views, nil
}

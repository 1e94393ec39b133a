package domain

import (
	"time"

	"github.com/google/uuid"
)

// Post is an immutable emoji-only micro-post. AuthorID is the opaque id the
// external user directory knows the author by, not a local user record.
type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthorProfile is the public slice of a directory user. It is fetched per
// request and never stored.
type AuthorProfile struct {
	ID       string  `json:"id"`
	Username *string `json:"username,omitempty"`
	ImageURL string  `json:"image_url"`
}

// PostView pairs a post with its resolved author for read responses.
type PostView struct {
	Post   Post          `json:"post"`
	Author AuthorProfile `json:"author"`
}

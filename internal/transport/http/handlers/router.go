package handlers

import (
	"net/http"

	"github.com/vedran77/chirp/internal/transport/http/middleware"
)

// NewRouter wires the caller-facing routes. The feed reads are public;
// creating a post requires an authenticated author.
func NewRouter(postHandler *PostHandler, feedStream http.Handler, jwtSecret string) http.Handler {
	auth := middleware.Auth(jwtSecret)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})

	mux.Handle("POST /api/v1/posts", auth(http.HandlerFunc(postHandler.Create)))
	mux.HandleFunc("GET /api/v1/posts", postHandler.List)
	mux.HandleFunc("GET /api/v1/posts/{id}", postHandler.Get)
	mux.HandleFunc("GET /api/v1/users/{id}/posts", postHandler.ListByAuthor)

	if feedStream != nil {
		mux.Handle("GET /ws/feed", feedStream)
	}

	return middleware.CORS(middleware.RequestLogger(mux))
}

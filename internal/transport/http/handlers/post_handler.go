package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vedran77/chirp/internal/domain"
	"github.com/vedran77/chirp/internal/service"
	"github.com/vedran77/chirp/internal/transport/http/middleware"
	"github.com/vedran77/chirp/pkg/validator"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

type CreatePostInput struct {
	Content string `json:"content"`
}

type FeedResponse struct {
	Posts []domain.PostView `json:"posts"`
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetAuthorID(r.Context())

	var input CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), authorID, input.Content)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationErrors(w, verr.Fields)
		case errors.Is(err, service.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in to post")
		case errors.Is(err, service.ErrRateLimited):
			// Limiter internals stay hidden from the caller.
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "You are posting too fast. Try again later.")
		default:
			log.Error().Err(err).Msg("create post")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	view, err := h.postService.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		default:
			log.Error().Err(err).Msg("get post")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.postService.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list posts")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: views})
}

func (h *PostHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := r.PathValue("id")
	if authorID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	views, err := h.postService.GetByAuthor(r.Context(), authorID)
	if err != nil {
		log.Error().Err(err).Msg("list posts by author")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: views})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

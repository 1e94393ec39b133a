package ws

import (
	"encoding/json"
	"time"

	"github.com/vedran77/chirp/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeAuthorSubscribe   = "author.subscribe"
	EventTypeAuthorUnsubscribe = "author.unsubscribe"
	EventTypePing              = "ping"
)

// Event types - Server → Client
const (
	EventTypePostNew = "post.new"
	EventTypePong    = "pong"
	EventTypeError   = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

// AuthorPayload narrows the stream to a single author's posts.
type AuthorPayload struct {
	AuthorID string `json:"author_id"`
}

// --- Server → Client payloads ---

type PostPayload struct {
	domain.Post
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}

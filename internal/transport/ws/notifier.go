package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/vedran77/chirp/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewPost(post *domain.Post) {
	evt, err := NewEvent(EventTypePostNew, PostPayload{Post: *post})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastNewPost(post.AuthorID, evt)
}

package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Hub manages connected feed clients and fans new posts out to them.
// The feed is public, so clients are tracked by connection rather than by
// account.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	authorID string
	data     []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			log.Info().Str("viewer", client.viewerID).Int("total", len(h.clients)).Msg("ws hub: client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.done)
				log.Info().Str("viewer", client.viewerID).Int("total", len(h.clients)).Msg("ws hub: client disconnected")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				// Clients with author subscriptions only get those feeds.
				if !client.WantsAuthor(msg.authorID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, client)
					close(client.done)
				}
			}
		}
	}
}

// BroadcastNewPost sends a post.new event to every interested client.
func (h *Hub) BroadcastNewPost(authorID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("ws hub: marshal error")
		return
	}
	h.broadcast <- &broadcastMsg{
		authorID: authorID,
		data:     data,
	}
}

package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection to the feed stream.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// viewerID is set when the connection carried a valid token; the feed
	// itself is public, so it is informational only.
	viewerID string

	// subscribedAuthors narrows the stream; empty means the full feed.
	subscribedAuthors map[string]struct{}
	mu                sync.RWMutex

	// send is never closed; the hub signals disconnect by closing done,
	// so sends racing a hub-side force-disconnect cannot panic.
	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, viewerID string) *Client {
	return &Client{
		hub:               hub,
		conn:              conn,
		viewerID:          viewerID,
		subscribedAuthors: make(map[string]struct{}),
		send:              make(chan []byte, sendBufSize),
		done:              make(chan struct{}),
	}
}

// WantsAuthor reports whether this client should receive a post by the given
// author. Clients with no subscriptions follow the full feed.
func (c *Client) WantsAuthor(authorID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.subscribedAuthors) == 0 {
		return true
	}
	_, ok := c.subscribedAuthors[authorID]
	return ok
}

// Subscribe narrows the stream to the given author (additive).
func (c *Client) Subscribe(authorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribedAuthors[authorID] = struct{}{}
}

// Unsubscribe removes an author subscription.
func (c *Client) Unsubscribe(authorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribedAuthors, authorID)
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Info().Str("viewer", c.viewerID).Msg("ws: client disconnected")
			} else {
				log.Error().Err(err).Str("viewer", c.viewerID).Msg("ws: read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Error().Err(err).Str("viewer", c.viewerID).Msg("ws: write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Error().Err(err).Str("viewer", c.viewerID).Msg("ws: ping error")
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeAuthorSubscribe:
		var p AuthorPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.AuthorID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid author.subscribe payload")
			return
		}
		c.Subscribe(p.AuthorID)

	case EventTypeAuthorUnsubscribe:
		var p AuthorPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.AuthorID == "" {
			c.sendError("INVALID_PAYLOAD", "invalid author.unsubscribe payload")
			return
		}
		c.Unsubscribe(p.AuthorID)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.trySend(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.trySend(data)
}

// trySend queues a message for the writer, dropping it when the client is
// disconnected or its buffer is full.
func (c *Client) trySend(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
	}
}

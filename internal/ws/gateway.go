// Package ws implements the per-room websocket endpoint: the connection
// session that validates inbound payloads and drives persistence, broadcast
// and event publication.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/domain"
	"github.com/nfrund/relay/internal/hub"
	"github.com/nfrund/relay/internal/notifier"
	"github.com/nfrund/relay/internal/pubsub"
)

// RoomStore is the slice of the persistence store the session needs.
type RoomStore interface {
	GetRoom(id string) (*domain.Room, error)
	AddMessage(roomID, sender, content string) (*domain.Message, error)
}

// Gateway upgrades websocket requests and runs one session per connection.
type Gateway struct {
	store     RoomStore
	hub       *hub.Hub
	publisher pubsub.Publisher
	upgrader  websocket.Upgrader
}

// NewGateway creates a Gateway over the given collaborators.
func NewGateway(store RoomStore, h *hub.Hub, publisher pubsub.Publisher) *Gateway {
	return &Gateway{
		store:     store,
		hub:       h,
		publisher: publisher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The relay has no authentication layer; cross-origin browser
			// clients are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// inboundPayload is what clients send over an open connection.
type inboundPayload struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// Serve handles GET /ws/:room_id. A connection to an unknown room is closed
// immediately with a policy-violation status and never enters the registry.
// Otherwise the session runs until the transport disconnects; any exit path
// unregisters the connection.
func (g *Gateway) Serve(c echo.Context) error {
	roomID := c.Param("room_id")

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("Failed to upgrade connection", "room_id", roomID, "error", err)
		return err
	}

	if _, err := g.store.GetRoom(roomID); err != nil {
		slog.Warn("Rejecting connection to unknown room", "room_id", roomID)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown room")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return nil
	}

	client := newClient(roomID, conn)
	g.hub.Register(roomID, client)
	go client.writePump()

	defer func() {
		g.hub.Unregister(roomID, client)
		client.Close()
	}()

	g.readLoop(c, client)
	return nil
}

// readLoop receives payloads one at a time until the connection drops.
// Malformed or incomplete payloads are dropped silently; a store failure is
// logged and the session continues.
func (g *Gateway) readLoop(c echo.Context, client *Client) {
	conn := client.conn
	roomID := client.roomID

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("Session ended with error", "room_id", roomID, "error", err)
			} else {
				slog.Info("Session closed", "room_id", roomID)
			}
			return
		}

		var payload inboundPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			slog.Debug("Dropping malformed payload", "room_id", roomID, "error", err)
			continue
		}
		if payload.Sender == "" || payload.Content == "" {
			slog.Debug("Dropping incomplete payload", "room_id", roomID, "sender", payload.Sender)
			continue
		}

		msg, err := g.store.AddMessage(roomID, payload.Sender, payload.Content)
		if err != nil {
			// Best-effort chat continues; the message is lost but the
			// session stays open.
			slog.Error("Failed to persist message", "room_id", roomID, "error", err)
			continue
		}

		wire, err := json.Marshal(msg.Wire())
		if err != nil {
			slog.Error("Failed to encode message", "room_id", roomID, "error", err)
			continue
		}
		g.hub.Broadcast(roomID, wire)

		ctx := c.Request().Context()
		if err := notifier.PublishMessageCreated(ctx, g.publisher, roomID, msg.Sender, msg.Content, &msg.ID); err != nil {
			slog.Warn("Failed to publish message event", "room_id", roomID, "error", err)
		}
	}
}

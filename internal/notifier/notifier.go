// Package notifier forwards new-message events to the downstream event
// collaborator (the chat agent). Forwarding is best-effort: each request is
// bounded by a timeout and failures are logged, never surfaced to the
// publishing side.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/relay/internal/pubsub"
)

// TopicMessageCreated is published whenever a message enters a room, whether
// from a live connection or the injection API.
const TopicMessageCreated = "chat.message.created"

// Event is the wire contract with the downstream collaborator.
type Event struct {
	EventType string    `json:"event_type"`
	RoomID    string    `json:"room_id"`
	Data      EventData `json:"data"`
}

// EventData carries the message fields the collaborator acts on. MessageID is
// null for messages that were broadcast without being persisted.
type EventData struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	MessageID *int64 `json:"message_id"`
}

// PublishMessageCreated puts a new_message event on the bus. The caller's
// flow is decoupled from delivery; the Forwarder owns the outbound request.
func PublishMessageCreated(ctx context.Context, pub pubsub.Publisher, roomID, sender, content string, messageID *int64) error {
	payload, err := json.Marshal(Event{
		EventType: "new_message",
		RoomID:    roomID,
		Data: EventData{
			Sender:    sender,
			Content:   content,
			MessageID: messageID,
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	return pub.Publish(ctx, pubsub.Message{
		Topic:   TopicMessageCreated,
		RoomID:  roomID,
		Payload: payload,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Forwarder subscribes to message events and POSTs them to the sink URL.
type Forwarder struct {
	sinkURL string
	client  *http.Client
}

// NewForwarder creates a Forwarder. The timeout bounds every outbound request
// so a stalled sink can never back up the bus subscriber.
func NewForwarder(sinkURL string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		sinkURL: sinkURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Start begins consuming message events. It returns once the subscription is
// active.
func (f *Forwarder) Start(ctx context.Context, sub pubsub.Subscriber) error {
	return sub.Subscribe(ctx, TopicMessageCreated, f.forward)
}

// forward delivers one event. It always returns nil: event delivery is
// fire-and-forget, so failures are logged rather than retried.
func (f *Forwarder) forward(ctx context.Context, msg pubsub.Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.sinkURL, bytes.NewReader(msg.Payload))
	if err != nil {
		slog.Error("Failed to build event request", "sink", f.sinkURL, "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("Failed to forward event", "sink", f.sinkURL, "room_id", msg.RoomID, "error", err)
		return nil
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		slog.Warn("Event sink returned error status", "sink", f.sinkURL, "room_id", msg.RoomID, "status", resp.StatusCode)
	}
	return nil
}

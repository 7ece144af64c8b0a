// Package agent implements the chat agent: a downstream consumer of
// new-message events that replies into rooms through the relay's injection
// API when a message addresses it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/convlog"
	"github.com/nfrund/relay/internal/notifier"
)

// DefaultName is the sender name the agent signs its messages with.
const DefaultName = "ChatAgent"

// Agent decides whether an event warrants a reply and sends it.
type Agent struct {
	name     string
	injector *Injector
	log      *convlog.Store
}

// New creates an Agent. The convlog store may be nil to disable transcripts.
func New(name string, injector *Injector, log *convlog.Store) *Agent {
	if name == "" {
		name = DefaultName
	}
	return &Agent{name: name, injector: injector, log: log}
}

// EventResponse reports what the agent did with an event.
type EventResponse struct {
	EventProcessed bool   `json:"event_processed"`
	ActionTaken    string `json:"action_taken"`
	MessageSent    *bool  `json:"message_sent_successfully,omitempty"`
}

// Events handles POST /events from the relay's notifier.
func (a *Agent) Events(c echo.Context) error {
	var ev notifier.Event
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event")
	}
	return c.JSON(http.StatusOK, a.process(c.Request().Context(), ev))
}

// Health handles GET /health.
func (a *Agent) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (a *Agent) process(ctx context.Context, ev notifier.Event) EventResponse {
	resp := EventResponse{EventProcessed: true, ActionTaken: "processed_other_event"}
	if ev.EventType != "new_message" {
		return resp
	}

	sender := ev.Data.Sender
	if sender == a.name {
		slog.Info("Ignoring message from self", "room_id", ev.RoomID)
		resp.ActionTaken = "ignored_self"
		return resp
	}

	if !Triggered(ev.Data.Content) {
		resp.ActionTaken = "ignored_message"
		return resp
	}

	slog.Info("Trigger condition met", "room_id", ev.RoomID, "sender", sender)
	reply := fmt.Sprintf("Hi %s, I see you mentioned me and asked a question! I'm still learning how to help effectively.", sender)

	a.record(ev.RoomID, "user", ev.Data.Content)
	a.record(ev.RoomID, "assistant", reply)

	if err := a.injector.Inject(ctx, ev.RoomID, a.name, reply, true); err != nil {
		slog.Error("Failed to send response", "room_id", ev.RoomID, "error", err)
		resp.ActionTaken = "send_failed"
		sent := false
		resp.MessageSent = &sent
		return resp
	}

	resp.ActionTaken = "sent_response"
	sent := true
	resp.MessageSent = &sent
	return resp
}

// record appends one line to the room's transcript; transcript failures are
// logged and never affect event handling.
func (a *Agent) record(roomID, role, content string) {
	if a.log == nil {
		return
	}
	if err := a.log.Append("room-"+roomID, convlog.Entry{Role: role, Content: content}); err != nil {
		slog.Warn("Failed to record transcript entry", "room_id", roomID, "error", err)
	}
}

// Triggered reports whether a message addresses the agent: it must contain a
// question mark and mention "agent" or "bot", case-insensitively.
func Triggered(content string) bool {
	lower := strings.ToLower(content)
	if !strings.Contains(lower, "?") {
		return false
	}
	return strings.Contains(lower, "agent") || strings.Contains(lower, "bot")
}

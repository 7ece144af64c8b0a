package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/domain"
	"github.com/nfrund/relay/internal/hub"
	"github.com/nfrund/relay/internal/store"
)

// InjectHandler lets external systems insert messages into a room without an
// open connection. It performs the same persist+broadcast sequence as a live
// session, entering the pipeline at the fan-out step. Unlike live sessions,
// injected messages do not fire downstream events; that keeps an agent that
// injects through this endpoint from being fed its own output.
type InjectHandler struct {
	store *store.Store
	hub   *hub.Hub
}

// NewInjectHandler creates an InjectHandler.
func NewInjectHandler(s *store.Store, h *hub.Hub) *InjectHandler {
	return &InjectHandler{store: s, hub: h}
}

// Inject handles POST /api/inject_message/:room_id. With save_to_db the
// message is persisted first and the stored record (with assigned id and
// timestamp) is broadcast; without it a transient record with a null id is
// broadcast and the store is untouched. Zero connected clients is a normal,
// successful outcome either way.
func (h *InjectHandler) Inject(c echo.Context) error {
	roomID := c.Param("room_id")

	var req InjectMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "sender and content are required")
	}

	if _, err := h.store.GetRoom(roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Room %q not found", roomID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up room")
	}

	var wire *domain.WireMessage
	if req.Persist() {
		msg, err := h.store.AddMessage(roomID, req.Sender, req.Content)
		if err != nil {
			slog.Error("Failed to persist injected message", "room_id", roomID, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save message")
		}
		wire = msg.Wire()
	} else {
		wire = domain.NewTransientMessage(roomID, req.Sender, req.Content)
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to encode message")
	}
	delivered := h.hub.Broadcast(roomID, payload)

	detail := "Message injected and broadcasted."
	if delivered == 0 {
		detail = "Message processed, but no clients connected to broadcast."
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "success",
		"message":   detail,
		"saved":     req.Persist(),
		"delivered": delivered,
	})
}

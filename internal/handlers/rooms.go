package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/domain"
	"github.com/nfrund/relay/internal/store"
)

// RoomHandler serves room registration, listing, lookup and message history.
type RoomHandler struct {
	store *store.Store
}

// NewRoomHandler creates a RoomHandler.
func NewRoomHandler(s *store.Store) *RoomHandler {
	return &RoomHandler{store: s}
}

// List handles GET /api/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.store.ListRooms()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list rooms")
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /api/rooms/:room_id.
func (h *RoomHandler) Get(c echo.Context) error {
	roomID := c.Param("room_id")
	room, err := h.store.GetRoom(roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Room %q not found", roomID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up room")
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /api/rooms. The room id is a URL-safe slug derived from
// the name; a duplicate id yields 409 with a Location header pointing at the
// existing room rather than overwriting it.
func (h *RoomHandler) Create(c echo.Context) error {
	var req CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	req.RoomName = strings.TrimSpace(req.RoomName)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Room name is required")
	}

	roomID := store.Slugify(req.RoomName)
	if err := h.store.CreateRoom(roomID, req.RoomName); err != nil {
		if errors.Is(err, domain.ErrRoomExists) {
			c.Response().Header().Set("Location", "/api/rooms/"+roomID)
			return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("Room id %q already exists", roomID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create room")
	}

	room, err := h.store.GetRoom(roomID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load created room")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"status": "success",
		"room":   room,
	})
}

// Messages handles GET /api/messages/:room_id, the full history of a room in
// ascending timestamp order.
func (h *RoomHandler) Messages(c echo.Context) error {
	roomID := c.Param("room_id")
	if _, err := h.store.GetRoom(roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Room %q not found", roomID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up room")
	}

	messages, err := h.store.ListMessages(roomID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load messages")
	}
	return c.JSON(http.StatusOK, messages)
}

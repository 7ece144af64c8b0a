// Package hub owns the mapping from room ids to live connections and the
// broadcast pipeline that fans messages out to them.
package hub

import (
	"log/slog"
	"sync"
)

// Conn is the transport handle the hub delivers to. Keeping this an interface
// decouples the registry from the websocket layer and lets tests inject
// failing connections.
type Conn interface {
	// Deliver enqueues one payload for the client. A non-nil error marks the
	// connection dead.
	Deliver(payload []byte) error

	// Close releases the connection's resources. Safe to call more than once.
	Close()
}

// Hub tracks which connections belong to which room and broadcasts payloads
// to them. A connection belongs to at most one room at a time; a room entry
// is removed exactly when its member set becomes empty.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{}
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		rooms: make(map[string]map[Conn]struct{}),
	}
}

// Register adds a connection to a room, creating the room entry on first use.
func (h *Hub) Register(roomID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[Conn]struct{})
		h.rooms[roomID] = members
	}
	members[conn] = struct{}{}
	slog.Info("Connection registered", "room_id", roomID, "members", len(members))
}

// Unregister removes a connection from a room. The room entry is dropped when
// the last member leaves. Unknown connections are a no-op.
func (h *Hub) Unregister(roomID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(roomID, conn)
}

func (h *Hub) unregisterLocked(roomID string, conn Conn) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := members[conn]; !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.rooms, roomID)
		slog.Info("Room emptied, registry entry removed", "room_id", roomID)
		return
	}
	slog.Info("Connection unregistered", "room_id", roomID, "members", len(members))
}

// Members returns a snapshot of a room's connections. The snapshot is safe to
// iterate while registrations continue concurrently. No ordering guarantee.
func (h *Hub) Members(roomID string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	snapshot := make([]Conn, 0, len(members))
	for conn := range members {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// RoomCount returns the number of rooms that currently have members.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Broadcast delivers a payload to every connection currently in a room and
// returns how many deliveries succeeded. Each delivery is attempted
// independently: a dead connection is unregistered and closed, and never
// blocks or fails delivery to the rest. An empty room is a normal outcome,
// not an error. No lock is held across delivery attempts.
func (h *Hub) Broadcast(roomID string, payload []byte) int {
	snapshot := h.Members(roomID)
	if len(snapshot) == 0 {
		slog.Debug("Broadcast to empty room", "room_id", roomID)
		return 0
	}

	delivered := 0
	for _, conn := range snapshot {
		if err := conn.Deliver(payload); err != nil {
			slog.Warn("Delivery failed, dropping connection", "room_id", roomID, "error", err)
			h.Unregister(roomID, conn)
			conn.Close()
			continue
		}
		delivered++
	}

	slog.Debug("Broadcast complete", "room_id", roomID, "delivered", delivered, "members", len(snapshot))
	return delivered
}

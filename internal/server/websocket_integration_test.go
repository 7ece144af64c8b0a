package server

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nfrund/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(base, roomID string) string {
	return "ws" + strings.TrimPrefix(base, "http") + "/ws/" + roomID
}

func dial(t *testing.T, base, roomID string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(base, roomID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWire(t *testing.T, conn *websocket.Conn) domain.WireMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var wire domain.WireMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	return wire
}

func TestWebsocketBroadcastsToAllRoomMembers(t *testing.T) {
	s, ts := newTestServer(t)

	c1 := dial(t, ts.URL, "general")
	c2 := dial(t, ts.URL, "general")

	// Give the second session a moment to finish registering.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, c1.WriteJSON(map[string]string{
		"sender":  "alice",
		"content": "hello room",
	}))

	for _, conn := range []*websocket.Conn{c1, c2} {
		wire := readWire(t, conn)
		assert.Equal(t, "alice", wire.Sender)
		assert.Equal(t, "hello room", wire.Content)
		assert.Equal(t, "general", wire.RoomID)
		require.NotNil(t, wire.ID)
		assert.Positive(t, *wire.ID)
	}

	messages, err := s.Store().ListMessages("general")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello room", messages[0].Content)
}

func TestWebsocketRejectsUnknownRoom(t *testing.T) {
	_, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, "ghost-room"), nil)
	require.NoError(t, err) // the upgrade itself succeeds
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "expected close error, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestWebsocketDropsInvalidPayloads(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts.URL, "general")
	time.Sleep(100 * time.Millisecond)

	// Malformed JSON and incomplete payloads are discarded silently; the
	// session stays open and keeps processing.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"sender": "", "content": "hi"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"sender": "alice", "content": "still here"}))

	wire := readWire(t, conn)
	assert.Equal(t, "still here", wire.Content)

	messages, err := s.Store().ListMessages("general")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "still here", messages[0].Content)
}

func TestWebsocketDisconnectUnregisters(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dial(t, ts.URL, "general")
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, s.Hub().RoomCount())

	conn.Close()

	require.Eventually(t, func() bool {
		return s.Hub().RoomCount() == 0
	}, 3*time.Second, 50*time.Millisecond, "room entry should be removed after the last client leaves")
}

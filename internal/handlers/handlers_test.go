package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/domain"
	"github.com/nfrund/relay/internal/hub"
	"github.com/nfrund/relay/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureConn implements hub.Conn and records delivered payloads.
type captureConn struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *captureConn) Deliver(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *captureConn) Close() {}

func (c *captureConn) last(t *testing.T) []byte {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.payloads)
	return c.payloads[len(c.payloads)-1]
}

type fixture struct {
	e     *echo.Echo
	store *store.Store
	hub   *hub.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)

	h := hub.New()

	e := echo.New()
	e.Validator = NewValidator()

	rooms := NewRoomHandler(st)
	inject := NewInjectHandler(st, h)

	api := e.Group("/api")
	api.GET("/rooms", rooms.List)
	api.POST("/rooms", rooms.Create)
	api.GET("/rooms/:room_id", rooms.Get)
	api.GET("/messages/:room_id", rooms.Messages)
	api.POST("/inject_message/:room_id", inject.Inject)

	return &fixture{e: e, store: st, hub: h}
}

func (f *fixture) request(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomDerivesSlug(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/rooms", `{"room_name": "Team Standup!"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Status string      `json:"status"`
		Room   domain.Room `json:"room"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "team-standup", resp.Room.ID)
	assert.Equal(t, "Team Standup!", resp.Room.Name)
}

func TestCreateRoomTwiceConflicts(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/rooms", `{"room_name": "Team Standup!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.request(http.MethodPost, "/api/rooms", `{"room_name": "Team Standup!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/api/rooms/team-standup", rec.Header().Get("Location"))
}

func TestCreateRoomBlankName(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/rooms", `{"room_name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/rooms/ghost-room", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRooms(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.CreateRoom("alpha", "Alpha"))

	rec := f.request(http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rooms []domain.Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, "Alpha", rooms[0].Name)
	assert.Equal(t, "General Chat", rooms[1].Name)
}

func TestMessagesUnknownRoom(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/messages/ghost-room", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessagesAscending(t *testing.T) {
	f := newFixture(t)
	for _, c := range []string{"one", "two", "three"} {
		_, err := f.store.AddMessage("general", "alice", c)
		require.NoError(t, err)
	}

	rec := f.request(http.MethodGet, "/api/messages/general", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []domain.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)
}

func TestInjectUnknownRoom(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/inject_message/ghost-room",
		`{"sender": "ext", "content": "hello"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// No persistence side effects.
	messages, err := f.store.ListMessages("ghost-room")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestInjectValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/inject_message/general", `{"sender": "", "content": "hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.request(http.MethodPost, "/api/inject_message/general", `{"sender": "ext", "content": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInjectPersistsByDefault(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/inject_message/general",
		`{"sender": "ext", "content": "saved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status    string `json:"status"`
		Delivered int    `json:"delivered"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	// No connected clients is still success.
	assert.Equal(t, 0, resp.Delivered)

	messages, err := f.store.ListMessages("general")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "saved", messages[0].Content)
}

func TestInjectWithoutPersistenceBroadcastsNullID(t *testing.T) {
	f := newFixture(t)

	conn := &captureConn{}
	f.hub.Register("general", conn)

	before, err := f.store.ListMessages("general")
	require.NoError(t, err)

	rec := f.request(http.MethodPost, "/api/inject_message/general",
		`{"sender": "ext", "content": "transient", "save_to_db": false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Delivered int  `json:"delivered"`
		Saved     bool `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Delivered)
	assert.False(t, resp.Saved)

	var wire domain.WireMessage
	require.NoError(t, json.Unmarshal(conn.last(t), &wire))
	assert.Nil(t, wire.ID)
	assert.Equal(t, "transient", wire.Content)

	// History unchanged.
	after, err := f.store.ListMessages("general")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestInjectPersistedMessageCarriesAssignedID(t *testing.T) {
	f := newFixture(t)

	conn := &captureConn{}
	f.hub.Register("general", conn)

	rec := f.request(http.MethodPost, "/api/inject_message/general",
		`{"sender": "ext", "content": "kept", "save_to_db": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var wire domain.WireMessage
	require.NoError(t, json.Unmarshal(conn.last(t), &wire))
	require.NotNil(t, wire.ID)
	assert.Positive(t, *wire.ID)
}

package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nfrund/relay/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwarderPostsEvents(t *testing.T) {
	received := make(chan Event, 1)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer sink.Close()

	bus := pubsub.NewBus()
	defer bus.Close()

	forwarder := NewForwarder(sink.URL, 5*time.Second)
	require.NoError(t, forwarder.Start(context.Background(), bus))

	id := int64(42)
	require.NoError(t, PublishMessageCreated(context.Background(), bus, "general", "alice", "hello", &id))

	select {
	case ev := <-received:
		assert.Equal(t, "new_message", ev.EventType)
		assert.Equal(t, "general", ev.RoomID)
		assert.Equal(t, "alice", ev.Data.Sender)
		assert.Equal(t, "hello", ev.Data.Content)
		require.NotNil(t, ev.Data.MessageID)
		assert.Equal(t, id, *ev.Data.MessageID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded event")
	}
}

func TestForwarderSinkFailureIsSwallowed(t *testing.T) {
	calls := make(chan struct{}, 2)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls <- struct{}{}
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer sink.Close()

	bus := pubsub.NewBus()
	defer bus.Close()

	forwarder := NewForwarder(sink.URL, time.Second)
	require.NoError(t, forwarder.Start(context.Background(), bus))

	// Publishing must succeed even though the sink is failing, and the
	// failing event must not be retried.
	require.NoError(t, PublishMessageCreated(context.Background(), bus, "general", "alice", "hello", nil))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sink never called")
	}

	select {
	case <-calls:
		t.Fatal("fire-and-forget event was retried")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestForwarderUnreachableSink(t *testing.T) {
	bus := pubsub.NewBus()
	defer bus.Close()

	forwarder := NewForwarder("http://127.0.0.1:1", 100*time.Millisecond)
	require.NoError(t, forwarder.Start(context.Background(), bus))

	// The publisher never observes the delivery failure.
	assert.NoError(t, PublishMessageCreated(context.Background(), bus, "general", "alice", "hello", nil))
}

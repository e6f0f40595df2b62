package livefeed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"complaintdesk/backend/internal/livefeed"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	id          string
	RecvChannel chan []byte
	closed      chan struct{}
}

func newMockClient(id string, buffer int) *MockClient {
	return &MockClient{id: id, RecvChannel: make(chan []byte, buffer), closed: make(chan struct{})}
}

func (c *MockClient) GetID() string                 { return c.id }
func (c *MockClient) GetSendChannel() chan<- []byte { return c.RecvChannel }
func (c *MockClient) Run()                          {}
func (c *MockClient) Close()                        { close(c.closed) }

func newHub(t *testing.T) (*livefeed.Hub, context.CancelFunc) {
	t.Helper()
	l, err := localization.New()
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	hub := livefeed.NewHub(nil, l, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, ch <-chan []byte) livefeed.Event {
	t.Helper()
	select {
	case raw := <-ch:
		var ev livefeed.Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return livefeed.Event{}
	}
}

func TestHub_BroadcastsToRegisteredClients(t *testing.T) {
	hub, _ := newHub(t)
	a, b := newMockClient("a", 4), newMockClient("b", 4)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	hub.Publish(context.Background(), &models.AuditLog{ID: "log-1", Action: models.ActionCreateComplaint})

	for _, c := range []*MockClient{a, b} {
		ev := receive(t, c.RecvChannel)
		assert.Equal(t, "log", ev.Type)
		assert.Equal(t, "Created complaint", ev.ActionLabel)
		assert.Equal(t, "log-1", ev.Data.ID)
	}
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	hub, _ := newHub(t)
	a := newMockClient("a", 4)
	require.True(t, hub.Register(a))

	hub.Unregister(a)
	hub.Unregister(a) // second unregister is ignored

	select {
	case <-a.closed:
	case <-time.After(time.Second):
		t.Fatal("client was not closed")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub, _ := newHub(t)
	slow := newMockClient("slow", 0)
	require.True(t, hub.Register(slow))

	hub.Publish(context.Background(), &models.AuditLog{Action: models.ActionLogin})

	select {
	case <-slow.closed:
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel := newHub(t)
	a := newMockClient("a", 4)
	require.True(t, hub.Register(a))

	cancel()

	select {
	case <-a.closed:
	case <-time.After(time.Second):
		t.Fatal("client was not closed on shutdown")
	}
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	hub, cancel := newHub(t)
	cancel()

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	returned := make(chan bool, 1)
	go func() {
		a := newMockClient("late", 1)
		hub.Unregister(a)
		returned <- hub.Register(a)
	}()

	select {
	case ok := <-returned:
		assert.False(t, ok, "registration after shutdown is refused")
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked on a stopped hub")
	}
}

func TestWebSocketClient_ReceivesEvents(t *testing.T) {
	hub, _ := newHub(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := livefeed.NewWebSocketClient(hub, conn, "admin-1")
		hub.Register(client)
		client.Run()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration happens in the handler goroutine; give it a moment
	time.Sleep(50 * time.Millisecond)
	hub.Publish(context.Background(), &models.AuditLog{ID: "log-9", Action: models.ActionDeleteUser})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev livefeed.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "log-9", ev.Data.ID)
	assert.Equal(t, "Deleted user", ev.ActionLabel)
}

package realtime

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func startHubServer(t *testing.T, hub *Hub, topics []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.ServeConn(conn, topics)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversPublishedMessages(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	defer hub.Close()

	srv := startHubServer(t, hub, nil)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	hub.Publish("posts", map[string]string{"action": "create"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Topic != "posts" {
		t.Fatalf("topic = %q, want posts", msg.Topic)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok || payload["action"] != "create" {
		t.Fatalf("payload = %+v", msg.Payload)
	}
}

func TestHubFiltersByTopic(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	defer hub.Close()

	srv := startHubServer(t, hub, []string{"bucket"})
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	hub.Publish("posts", map[string]string{"action": "create"})
	hub.Publish("bucket", map[string]string{"action": "add"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	// The posts message must have been skipped for this subscriber.
	if msg.Topic != "bucket" {
		t.Fatalf("topic = %q, want bucket", msg.Topic)
	}
}

func TestHubPublishWithNoSubscribers(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))
	defer hub.Close()

	// Must not block or panic.
	hub.Publish("posts", map[string]string{"action": "create"})
	if hub.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", hub.ClientCount())
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0))

	srv := startHubServer(t, hub, nil)
	conn := dial(t, srv)
	waitForClients(t, hub, 1)

	hub.Close()

	// The client's connection winds down once its send channel closes.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	waitForClients(t, hub, 0)

	// Publishing after Close is a no-op.
	hub.Publish("posts", map[string]string{"action": "create"})
}

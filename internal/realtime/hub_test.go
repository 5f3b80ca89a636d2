package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

func dialTestServer(t *testing.T, hub *Hub, origin string) *websocket.Conn {
	t.Helper()

	handler := NewHandler(hub, func(o string) bool { return o == "http://allowed.example" }, logger.NewNop())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{}
	if origin != "" {
		header["Origin"] = []string{origin}
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		if resp != nil {
			t.Fatalf("dial failed with status %d: %v", resp.StatusCode, err)
		}
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
}

func TestHub_PublishReachesEveryClient(t *testing.T) {
	hub := NewHub(logger.NewNop())
	defer hub.Close()

	first := dialTestServer(t, hub, "")
	second := dialTestServer(t, hub, "")
	waitForClients(t, hub, 2)

	hub.Publish(Event{Type: "video.published", Payload: map[string]string{"id": "v1"}})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if event.Type != "video.published" {
			t.Errorf("event type = %q, want video.published", event.Type)
		}
		payload, ok := event.Payload.(map[string]interface{})
		if !ok || payload["id"] != "v1" {
			t.Errorf("payload = %v, want id v1", event.Payload)
		}
	}
}

func TestHub_DisconnectedClientIsRemoved(t *testing.T) {
	hub := NewHub(logger.NewNop())
	defer hub.Close()

	conn := dialTestServer(t, hub, "")
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// Publishing into an empty hub is fine.
	hub.Publish(Event{Type: "tweet.created"})
}

func TestHandler_RejectsDisallowedOrigin(t *testing.T) {
	hub := NewHub(logger.NewNop())
	defer hub.Close()

	handler := NewHandler(hub, func(o string) bool { return o == "http://allowed.example" }, logger.NewNop())
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("dial from a disallowed origin must fail")
	}

	header["Origin"] = []string{"http://allowed.example"}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial from the allowed origin: %v", err)
	}
	conn.Close()
}

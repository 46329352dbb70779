// Package testhelpers provides common utilities for testing the SharkChat
// server.
//
// It contains reusable helpers shared across the integration tests: booting a
// full in-memory application, dialing WebSocket clients, and exchanging chat
// events with deadlines.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shark-Fang/SharkChat/internal/server"
	"github.com/Shark-Fang/SharkChat/internal/store"
)

// App is a running SharkChat instance backed by the in-memory store.
type App struct {
	Store  *store.Memory
	Hub    *server.Hub
	Server *httptest.Server
}

// StartApp boots the full application stack on an httptest server and
// registers cleanup. The test server's own URL is added to the origin
// allowlist so dialed clients pass the upgrade check.
func StartApp(t *testing.T) *App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemory()
	registry := server.NewRegistry()
	broadcaster := server.NewBroadcaster(registry, logger)
	router := server.NewRouter(st, registry, broadcaster, logger)
	hub := server.NewHub(registry, router, logger)
	go hub.Run()

	api := &server.API{Hub: hub, Store: st, Log: logger}
	ts := httptest.NewServer(server.SetupRoutes(api))

	cfg := server.NewConfig()
	cfg.AllowedOrigins = append(cfg.AllowedOrigins, ts.URL)
	server.SetConfig(cfg)

	t.Cleanup(func() {
		ts.Close()
		_ = hub.Shutdown(2 * time.Second)
		server.SetConfig(nil)
	})

	return &App{Store: st, Hub: hub, Server: ts}
}

// WSURL returns the ws:// URL of the app's WebSocket endpoint.
func (a *App) WSURL() string {
	return "ws" + a.Server.URL[len("http"):] + "/ws"
}

// Dial opens a WebSocket connection to the app with an allowed origin and
// returns an event reader over it. The connection is closed at test cleanup.
func Dial(t *testing.T, app *App) *EventConn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", app.Server.URL)

	conn, resp, err := dialer.Dial(app.WSURL(), headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &EventConn{conn: conn}
}

// EventConn wraps a WebSocket connection with event-level send/receive. The
// server may coalesce queued events newline-separated into a single frame, so
// received frames are split and buffered.
type EventConn struct {
	conn    *websocket.Conn
	pending [][]byte
}

// Close sends a normal close frame and closes the connection.
func (c *EventConn) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// Send writes one inbound event as JSON.
func (c *EventConn) Send(t *testing.T, ev server.InboundEvent) {
	t.Helper()
	if err := c.conn.WriteJSON(ev); err != nil {
		t.Fatalf("Failed to send event: %v", err)
	}
}

// SendRaw writes a raw text frame.
func (c *EventConn) SendRaw(t *testing.T, payload []byte) {
	t.Helper()
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("Failed to send raw frame: %v", err)
	}
}

// Next reads the next outbound event, waiting up to timeout.
func (c *EventConn) Next(t *testing.T, timeout time.Duration) server.OutboundEvent {
	t.Helper()

	for len(c.pending) == 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		for _, part := range bytes.Split(raw, []byte{'\n'}) {
			if len(part) > 0 {
				c.pending = append(c.pending, part)
			}
		}
	}

	payload := c.pending[0]
	c.pending = c.pending[1:]

	var ev server.OutboundEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("Failed to decode event %s: %v", payload, err)
	}
	return ev
}

// ExpectSilence asserts that no event arrives within the timeout.
func (c *EventConn) ExpectSilence(t *testing.T, timeout time.Duration) {
	t.Helper()

	if len(c.pending) > 0 {
		t.Fatalf("Expected no event, have %s buffered", c.pending[0])
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, raw, err := c.conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no event, received %s", raw)
	}
	if netErr, ok := err.(interface{ Timeout() bool }); !ok || !netErr.Timeout() {
		t.Fatalf("Unexpected error while waiting for silence: %v", err)
	}
}

// CreateRoom creates a room through the HTTP API and returns its code.
func CreateRoom(t *testing.T, app *App) string {
	t.Helper()

	resp, err := http.Post(app.Server.URL+"/api/rooms", "application/json", http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create room: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 creating room, got %d", resp.StatusCode)
	}

	var body struct {
		RoomCode string `json:"roomCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode create-room response: %v", err)
	}
	if body.RoomCode == "" {
		t.Fatal("Create-room response missing roomCode")
	}
	return body.RoomCode
}

// FetchHistory fetches a room's stored messages through the HTTP API.
func FetchHistory(t *testing.T, app *App, roomCode string) []store.Message {
	t.Helper()

	resp, err := http.Get(app.Server.URL + "/api/rooms/" + roomCode + "/messages")
	if err != nil {
		t.Fatalf("Failed to fetch history: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 fetching history, got %d", resp.StatusCode)
	}

	var messages []store.Message
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("Failed to decode history response: %v", err)
	}
	return messages
}

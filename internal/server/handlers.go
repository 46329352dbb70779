// Package server exposes the HTTP surface: WebSocket upgrades, room creation,
// message history, and health checks.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Shark-Fang/SharkChat/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// API bundles the handlers' dependencies.
type API struct {
	Hub   *Hub
	Store store.Store
	Log   *slog.Logger
}

// WebSocket handles upgrade requests on /ws. The upgraded connection is
// wrapped in a Client and handed to the hub, which launches its pumps.
func (a *API) WebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Log.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "err", err)
		return
	}

	a.Hub.Register(NewClient(conn, a.Hub, r.RemoteAddr))
}

// CreateRoom handles POST /api/rooms: it mints a fresh room code and returns
// it as {"roomCode": "..."}. Storage failures, including an exhausted code
// space, surface as a 500 with a generic message.
func (a *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	code, err := a.Store.CreateRoom(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrCodeSpaceExhausted) {
			a.Log.Error("room code space exhausted")
		} else {
			a.Log.Error("create room", "err", err)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to create room"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"roomCode": code})
}

// RoomMessages handles GET /api/rooms/{roomCode}/messages: the most recent
// stored messages for the room, oldest first. Unknown rooms yield an empty
// array, never an error; liveness and history are independent.
func (a *API) RoomMessages(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("roomCode")
	if roomCode == "" {
		http.Error(w, "room code required", http.StatusBadRequest)
		return
	}

	messages, err := a.Store.MessagesByRoom(r.Context(), roomCode, currentConfig().HistoryLimit)
	if err != nil {
		a.Log.Error("fetch room history", "room", roomCode, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to fetch messages"})
		return
	}
	if messages == nil {
		messages = []store.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
}

// Health provides a simple health check endpoint that returns server status.
func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("SharkChat server is running!"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

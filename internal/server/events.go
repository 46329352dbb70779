// Package server defines the wire-level event shapes exchanged with chat
// clients and helpers to construct them.
package server

import (
	"time"

	"github.com/Shark-Fang/SharkChat/internal/store"
)

// Event type discriminators. Join and Message are the only inbound types;
// System, Users, Message, and Error appear outbound.
const (
	EventJoin    = "join"
	EventMessage = "message"
	EventSystem  = "system"
	EventUsers   = "users"
	EventError   = "error"
)

// welcomeText is sent privately to a session right after a successful join.
const welcomeText = "Welcome to SharkChat! You've joined the room."

// InboundEvent is one JSON object received from a client over the WebSocket.
type InboundEvent struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Sender   string `json:"sender,omitempty"`
	Content  string `json:"content,omitempty"`
}

// OutboundEvent is one JSON object delivered to clients. Type discriminates
// which of the optional fields are populated.
type OutboundEvent struct {
	Type      string   `json:"type"`
	RoomCode  string   `json:"roomCode,omitempty"`
	Sender    string   `json:"sender,omitempty"`
	Content   string   `json:"content,omitempty"`
	Users     []string `json:"users,omitempty"`
	ID        int64    `json:"id,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

func eventTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func systemEvent(roomCode, content string) OutboundEvent {
	return OutboundEvent{
		Type:      EventSystem,
		RoomCode:  roomCode,
		Content:   content,
		Timestamp: eventTimestamp(time.Now()),
	}
}

func usersEvent(roomCode string, users []string) OutboundEvent {
	return OutboundEvent{
		Type:      EventUsers,
		RoomCode:  roomCode,
		Users:     users,
		Timestamp: eventTimestamp(time.Now()),
	}
}

func messageEvent(msg store.Message) OutboundEvent {
	return OutboundEvent{
		Type:      EventMessage,
		RoomCode:  msg.RoomCode,
		Sender:    msg.Sender,
		Content:   msg.Content,
		ID:        msg.ID,
		Timestamp: eventTimestamp(msg.Timestamp),
	}
}

func errorEvent(content string) OutboundEvent {
	return OutboundEvent{Type: EventError, Content: content}
}

// Package store defines the room and message persistence contract for SharkChat
// along with the in-memory and Postgres implementations of it.
//
// The chat core only ever talks to the Store interface; which backend is used
// is decided at startup from configuration.
package store

import (
	"context"
	"errors"
	"time"
)

// DefaultHistoryLimit is the number of messages returned by MessagesByRoom
// when callers do not request a different window.
const DefaultHistoryLimit = 50

var (
	// ErrRoomNotFound is returned when a room code does not exist in the store.
	ErrRoomNotFound = errors.New("store: room not found")

	// ErrCodeSpaceExhausted is returned when room code generation keeps
	// colliding with existing rooms past the retry budget.
	ErrCodeSpaceExhausted = errors.New("store: room code space exhausted")
)

// Room is a chat room record. Rooms are immutable once created; the code is
// the shareable identity clients join with.
type Room struct {
	ID        int64
	Code      string
	CreatedAt time.Time
}

// Message is a single stored chat message. ID and Timestamp are assigned by
// the store on creation and are never client-supplied.
type Message struct {
	ID        int64     `json:"id"`
	RoomCode  string    `json:"roomCode"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence contract the chat core depends on.
type Store interface {
	// CreateRoom generates a fresh unique room code, persists the room, and
	// returns the code. Returns ErrCodeSpaceExhausted if code generation keeps
	// colliding past the retry budget.
	CreateRoom(ctx context.Context) (string, error)

	// RoomByCode returns the room with the given code, or ErrRoomNotFound.
	RoomByCode(ctx context.Context, code string) (Room, error)

	// CreateMessage appends a message to a room's log, assigning its id and
	// timestamp, and returns the stored message. A returned error means the
	// message was not persisted and must not be broadcast.
	CreateMessage(ctx context.Context, roomCode, sender, content string) (Message, error)

	// MessagesByRoom returns up to limit of the most recent messages in the
	// room, oldest first. Unknown rooms and empty rooms both yield an empty
	// slice. A limit <= 0 falls back to DefaultHistoryLimit.
	MessagesByRoom(ctx context.Context, roomCode string, limit int) ([]Message, error)

	// Close releases any resources held by the store.
	Close()
}

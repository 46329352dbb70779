package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-memory Store implementation. It is the default backend when
// no database is configured and the backend used by the test suites.
type Memory struct {
	mu         sync.Mutex
	rooms      map[string]Room
	messages   map[string][]Message
	nextRoomID int64
	nextMsgID  int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:    make(map[string]Room),
		messages: make(map[string][]Message),
	}
}

// CreateRoom generates a unique room code and records the room.
func (m *Memory) CreateRoom(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for range codeAttempts {
		code, err := newRoomCode()
		if err != nil {
			return "", err
		}
		if _, exists := m.rooms[code]; exists {
			continue
		}

		m.nextRoomID++
		m.rooms[code] = Room{
			ID:        m.nextRoomID,
			Code:      code,
			CreatedAt: time.Now().UTC(),
		}
		return code, nil
	}

	return "", ErrCodeSpaceExhausted
}

// RoomByCode returns the room record for a code.
func (m *Memory) RoomByCode(_ context.Context, code string) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return room, nil
}

// CreateMessage appends a message to the room's log with the next id.
func (m *Memory) CreateMessage(_ context.Context, roomCode, sender, content string) (Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMsgID++
	msg := Message{
		ID:        m.nextMsgID,
		RoomCode:  roomCode,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	m.messages[roomCode] = append(m.messages[roomCode], msg)
	return msg, nil
}

// MessagesByRoom returns the most recent messages in chronological order.
func (m *Memory) MessagesByRoom(_ context.Context, roomCode string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.messages[roomCode]
	if len(log) > limit {
		log = log[len(log)-limit:]
	}

	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}

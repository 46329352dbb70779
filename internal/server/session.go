// Package server models the per-connection join state machine via the Session
// type.
package server

import (
	"sync"

	"github.com/google/uuid"
)

type sessionState int

const (
	stateUnjoined sessionState = iota
	stateJoined
	stateClosed
)

// Session is the server-side state of one live connection: an opaque id, the
// room it joined, and the display name it joined with. Room code and name are
// set together exactly once on a successful join and never change afterwards;
// there is no mid-session room switching.
type Session struct {
	id     string
	client *Client

	mu       sync.Mutex
	state    sessionState
	roomCode string
	name     string
}

func newSession(c *Client) *Session {
	return &Session{
		id:     uuid.NewString(),
		client: c,
		state:  stateUnjoined,
	}
}

// ID returns the session's opaque id.
func (s *Session) ID() string { return s.id }

// join transitions Unjoined -> Joined, recording the room and display name.
// It rejects empty names, repeat joins, and events after close; on rejection
// the session state is unchanged.
func (s *Session) join(roomCode, name string) *eventError {
	if name == "" {
		return validationError(msgUsernameRequired)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateJoined:
		return preconditionError(msgAlreadyJoined)
	case stateClosed:
		return preconditionError(msgJoinAfterClose)
	}

	s.state = stateJoined
	s.roomCode = roomCode
	s.name = name
	return nil
}

// sender returns the room and display name a message from this session should
// carry, or a precondition error if the session has not joined.
func (s *Session) sender() (roomCode, name string, err *eventError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateJoined {
		return "", "", preconditionError(msgJoinBeforeMessage)
	}
	return s.roomCode, s.name, nil
}

// close transitions the session to Closed and reports whether it had joined a
// room, and if so which one and under what name. Safe to call more than once;
// only the first call reports a joined room.
func (s *Session) close() (roomCode, name string, wasJoined bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasJoined = s.state == stateJoined
	roomCode, name = s.roomCode, s.name
	s.state = stateClosed
	return roomCode, name, wasJoined
}

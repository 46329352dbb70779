package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// codeAttempts bounds how many times CreateRoom will regenerate a room code
// after a collision before giving up with ErrCodeSpaceExhausted.
const codeAttempts = 5

// newRoomCode returns a random 6-character lowercase hex room code. It is a
// variable so tests can force collisions, which crypto/rand never produces.
var newRoomCode = func() (string, error) {
	var buf [3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

package store

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roomCodePattern = regexp.MustCompile(`^[0-9a-f]{6}$`)

func TestCreateRoomGeneratesShortCode(t *testing.T) {
	m := NewMemory()

	code, err := m.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, roomCodePattern, code)

	room, err := m.RoomByCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, code, room.Code)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoomByCodeUnknown(t *testing.T) {
	m := NewMemory()

	_, err := m.RoomByCode(context.Background(), "ab12cd")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestConcurrentCreateRoomCodesAreUnique(t *testing.T) {
	m := NewMemory()

	const n = 50
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := m.CreateRoom(context.Background())
			assert.NoError(t, err)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for code := range codes {
		assert.False(t, seen[code], "duplicate room code %q", code)
		seen[code] = true
	}
}

// stubRoomCodes replaces the code generator with one that replays the given
// sequence, repeating the last entry once the sequence is spent.
func stubRoomCodes(t *testing.T, codes ...string) {
	t.Helper()

	orig := newRoomCode
	t.Cleanup(func() { newRoomCode = orig })

	i := 0
	newRoomCode = func() (string, error) {
		code := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return code, nil
	}
}

func TestCreateRoomRetriesAfterCollision(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	stubRoomCodes(t, "aaaaaa", "aaaaaa", "bbbbbb")

	first, err := m.CreateRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", first)

	// The second create collides once, regenerates, and still succeeds.
	second, err := m.CreateRoom(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bbbbbb", second)
}

func TestCreateRoomExhaustsCodeSpace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	stubRoomCodes(t, "cccccc")

	_, err := m.CreateRoom(ctx)
	require.NoError(t, err)

	// Every regeneration yields the taken code until the retries run out.
	_, err = m.CreateRoom(ctx)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

func TestCreateMessageAssignsMonotonicIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	code, err := m.CreateRoom(ctx)
	require.NoError(t, err)

	var lastID int64
	for i := range 5 {
		msg, err := m.CreateMessage(ctx, code, "Alice", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		assert.Greater(t, msg.ID, lastID)
		assert.Equal(t, code, msg.RoomCode)
		assert.Equal(t, "Alice", msg.Sender)
		assert.False(t, msg.Timestamp.IsZero())
		lastID = msg.ID
	}
}

func TestMessagesByRoomReturnsRecentWindowInOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	code, err := m.CreateRoom(ctx)
	require.NoError(t, err)

	// Under the limit: everything comes back in creation order.
	for i := range 10 {
		_, err := m.CreateMessage(ctx, code, "Bob", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}
	got, err := m.MessagesByRoom(ctx, code, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, got, 10)
	for i, msg := range got {
		assert.Equal(t, fmt.Sprintf("m%d", i), msg.Content)
	}

	// Over the limit: only the most recent 50, still oldest first.
	for i := 10; i < 60; i++ {
		_, err := m.CreateMessage(ctx, code, "Bob", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}
	got, err = m.MessagesByRoom(ctx, code, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, got, DefaultHistoryLimit)
	assert.Equal(t, "m10", got[0].Content)
	assert.Equal(t, "m59", got[len(got)-1].Content)
}

func TestMessagesByRoomUnknownRoomIsEmpty(t *testing.T) {
	m := NewMemory()

	got, err := m.MessagesByRoom(context.Background(), "nosuch", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMessagesByRoomDefaultsLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	code, err := m.CreateRoom(ctx)
	require.NoError(t, err)
	for i := range 60 {
		_, err := m.CreateMessage(ctx, code, "Cay", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	got, err := m.MessagesByRoom(ctx, code, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultHistoryLimit)
}

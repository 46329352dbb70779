package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shark-Fang/SharkChat/internal/store"
)

// exhaustedStore fails room creation the way a store does when code
// generation keeps colliding past its retries.
type exhaustedStore struct {
	*store.Memory
}

func (s *exhaustedStore) CreateRoom(context.Context) (string, error) {
	return "", store.ErrCodeSpaceExhausted
}

func newTestAPI(st store.Store) *API {
	return &API{
		Store: st,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestCreateRoomHandlerReturnsCode(t *testing.T) {
	api := newTestAPI(store.NewMemory())

	w := httptest.NewRecorder()
	api.CreateRoom(w, httptest.NewRequest(http.MethodPost, "/api/rooms", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Regexp(t, `^[0-9a-f]{6}$`, body["roomCode"])
}

func TestCreateRoomHandlerReportsExhaustion(t *testing.T) {
	api := newTestAPI(&exhaustedStore{Memory: store.NewMemory()})

	w := httptest.NewRecorder()
	api.CreateRoom(w, httptest.NewRequest(http.MethodPost, "/api/rooms", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to create room", body["message"])
}

package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"http://localhost:8080", "http://localhost:8080", true},
		{"HTTPS://Chat.Example.COM", "https://chat.example.com", true},
		{"chat.example.com", "", false},
		{"", "", false},
		{"http://", "", false},
	}

	for _, tt := range tests {
		got, ok := normalizeOrigin(tt.in)
		assert.Equal(t, tt.ok, ok, "origin %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "origin %q", tt.in)
		}
	}
}

func TestCheckOriginAgainstAllowlist(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(&Config{AllowedOrigins: []string{"https://chat.example.com"}})

	allowed := httptest.NewRequest("GET", "/ws", nil)
	allowed.Header.Set("Origin", "https://chat.example.com")
	assert.True(t, checkOrigin(allowed))

	denied := httptest.NewRequest("GET", "/ws", nil)
	denied.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, checkOrigin(denied))

	missing := httptest.NewRequest("GET", "/ws", nil)
	assert.False(t, checkOrigin(missing))
}

func TestCheckOriginWildcard(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(&Config{AllowedOrigins: []string{"*"}})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anything.example.com")
	assert.True(t, checkOrigin(r))
}

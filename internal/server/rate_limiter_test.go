package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterAllowsBurst(t *testing.T) {
	l := newFrameLimiter(3, time.Second)

	for i := range 3 {
		assert.True(t, l.allow(), "frame %d within burst should pass", i)
	}
	assert.False(t, l.allow(), "frame beyond burst should be throttled")
}

func TestFrameLimiterRefills(t *testing.T) {
	l := newFrameLimiter(2, 100*time.Millisecond)

	assert.True(t, l.allow())
	assert.True(t, l.allow())
	assert.False(t, l.allow())

	time.Sleep(120 * time.Millisecond)
	assert.True(t, l.allow(), "tokens should return after the refill interval")
}

func TestFrameLimiterSanitizesArguments(t *testing.T) {
	l := newFrameLimiter(0, 0)

	assert.True(t, l.allow(), "sanitized limiter should allow at least one frame")
	assert.False(t, l.allow())
}

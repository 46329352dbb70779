// Package server implements per-connection frame throttling so a single
// client cannot flood the event router.
package server

import (
	"sync"
	"time"
)

// frameLimiter is a token bucket counted in whole frames. A connection may
// burst up to burst frames at once; afterwards tokens come back one at a
// time, spread evenly across the configured refill interval.
type frameLimiter struct {
	mu         sync.Mutex
	tokens     int
	burst      int
	tokenEvery time.Duration
	lastRefill time.Time
}

func newFrameLimiter(burst int, refillInterval time.Duration) *frameLimiter {
	if burst <= 0 {
		burst = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Second
	}

	tokenEvery := refillInterval / time.Duration(burst)
	if tokenEvery <= 0 {
		tokenEvery = time.Nanosecond
	}

	return &frameLimiter{
		tokens:     burst,
		burst:      burst,
		tokenEvery: tokenEvery,
		lastRefill: time.Now(),
	}
}

// allow consumes one token, reporting false when the bucket is empty.
func (l *frameLimiter) allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if refilled := int(now.Sub(l.lastRefill) / l.tokenEvery); refilled > 0 {
		l.tokens += refilled
		if l.tokens > l.burst {
			l.tokens = l.burst
		}
		l.lastRefill = l.lastRefill.Add(time.Duration(refilled) * l.tokenEvery)
	}

	if l.tokens == 0 {
		return false
	}
	l.tokens--
	return true
}

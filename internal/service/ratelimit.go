package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// RateLimiter admits calls per conversation token on a fixed window. Once
// the cap is hit within a window, callers are rejected until the window
// elapses and the counter resets. The window is approximate rather than
// strictly sliding; it exists to prevent abuse, not to bill.
type RateLimiter struct {
	window time.Duration
	max    int
	logger *zap.Logger

	mu      sync.Mutex
	buckets map[string]*tokenWindow

	now func() time.Time
}

type tokenWindow struct {
	count       int
	windowStart time.Time
}

func NewRateLimiter(window time.Duration, max int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		window:  window,
		max:     max,
		logger:  logger,
		buckets: make(map[string]*tokenWindow),
		now:     time.Now,
	}
}

// Admit reports whether a call bearing the given conversation token may
// proceed, atomically counting it against the token's window.
func (rl *RateLimiter) Admit(token string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[token]
	if !ok || now.Sub(bucket.windowStart) >= rl.window {
		rl.buckets[token] = &tokenWindow{count: 1, windowStart: now}
		return true
	}

	if bucket.count >= rl.max {
		rl.logger.Warn("Rate limit exceeded", zap.String("conversation_token", token))
		return false
	}

	bucket.count++
	return true
}

package service

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMaxAttempts   = 5
	defaultLockoutWindow = 15 * time.Minute
)

type failureRecord struct {
	count       int
	lastFailure time.Time
}

// LoginThrottle tracks failed login attempts per identity in memory and is
// the single source of truth for lockout decisions. Failures accumulate in
// a window sliding from the most recent failure; a record older than the
// window is treated as absent even before it is purged.
type LoginThrottle struct {
	mu          sync.Mutex
	records     map[string]failureRecord
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLoginThrottle builds a throttle. Non-positive arguments fall back to
// the defaults (5 attempts / 15 minutes).
func NewLoginThrottle(maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultLockoutWindow
	}
	return &LoginThrottle{
		records:     make(map[string]failureRecord),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// WithClock overrides the time source. For tests.
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	t.now = now
	return t
}

// IsLocked reports whether the identity has reached the attempt limit inside
// the current window. An expired record is cleared on sight so stale state
// never lingers.
func (t *LoginThrottle) IsLocked(_ context.Context, identity string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[identity]
	if !ok {
		return false, nil
	}
	if t.now().Sub(rec.lastFailure) > t.window {
		delete(t.records, identity)
		return false, nil
	}
	return rec.count >= t.maxAttempts, nil
}

// RecordFailure counts one failed attempt. A failure after the previous
// window expired starts a fresh record at count 1 rather than piling onto
// stale state.
func (t *LoginThrottle) RecordFailure(_ context.Context, identity string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	rec, ok := t.records[identity]
	if !ok || now.Sub(rec.lastFailure) > t.window {
		t.records[identity] = failureRecord{count: 1, lastFailure: now}
		return nil
	}

	rec.count++
	rec.lastFailure = now
	t.records[identity] = rec
	return nil
}

// Reset unconditionally clears the identity's record. Called on successful
// authentication.
func (t *LoginThrottle) Reset(_ context.Context, identity string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, identity)
	return nil
}

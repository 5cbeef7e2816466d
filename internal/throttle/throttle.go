package throttle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLocked is returned by CheckAllowed while an origin key is locked out.
var ErrLocked = errors.New("origin locked out")

// Throttle gates login attempts per origin key.
//
// Implementations must serialize the read-modify-write on each key's counter:
// concurrent failures for the same origin must not lose increments, and the
// lock transition must be decided on the post-increment count.
type Throttle interface {
	CheckAllowed(ctx context.Context, key string) error
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Config carries the shared throttle policy.
type Config struct {
	MaxAttempts     int
	LockoutDuration time.Duration
	Now             func() time.Time
}

type entry struct {
	failed      int
	lockedUntil time.Time
}

// Memory is the in-process Throttle used for single-instance deployments.
// Stale entries persist for the process lifetime, which is acceptable at
// single-operator scale.
type Memory struct {
	cfg     Config
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemory(cfg Config) *Memory {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Memory{
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
}

// CheckAllowed rejects with ErrLocked while the key's lockout window is in
// the future. The check runs before any credential work so a locked origin
// is rejected cheaply.
func (m *Memory) CheckAllowed(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !e.lockedUntil.IsZero() && m.cfg.Now().Before(e.lockedUntil) {
		return ErrLocked
	}
	return nil
}

// RecordFailure increments the key's counter and locks the key once the
// post-increment count reaches the threshold. The count survives lock expiry,
// so a key that keeps failing re-locks on its next failure.
func (m *Memory) RecordFailure(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.failed++
	if e.failed >= m.cfg.MaxAttempts {
		e.lockedUntil = m.cfg.Now().Add(m.cfg.LockoutDuration)
	}
	return nil
}

// Reset clears the key after a successful login.
func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Failures reports the current counter for a key. Intended for tests.
func (m *Memory) Failures(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok {
		return e.failed
	}
	return 0
}

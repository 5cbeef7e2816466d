package stores

import (
	"context"
	"sync"
	"time"
)

// Record is the liveness entry kept per outstanding refresh token.
// Records are replaced, never mutated in place.
type Record struct {
	Subject   string
	ExpiresAt time.Time
}

// Store tracks live refresh tokens keyed by the opaque token string.
//
// Implementations must be safe for concurrent use. Remove reports whether a
// record was actually deleted so that two concurrent rotations of the same
// token resolve to exactly one winner.
type Store interface {
	Put(ctx context.Context, token string, rec Record) error
	Get(ctx context.Context, token string) (Record, bool, error)
	Remove(ctx context.Context, token string) (bool, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Memory is the in-process Store used for single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]Record),
	}
}

// Put inserts a live record. A colliding token string is overwritten
// silently; token entropy makes collisions a non-concern.
func (m *Memory) Put(_ context.Context, token string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[token] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, token string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[token]
	return rec, ok, nil
}

// Remove deletes a record. Absence is not an error.
func (m *Memory) Remove(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[token]
	if ok {
		delete(m.records, token)
	}
	return ok, nil
}

// SweepExpired removes every record whose expiry has passed and returns how
// many were removed.
func (m *Memory) SweepExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, rec := range m.records {
		if !rec.ExpiresAt.After(now) {
			delete(m.records, token)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live records. Intended for tests and diagnostics.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.records)
}

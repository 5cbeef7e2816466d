package mechauth

import (
	"sync"
	"testing"
	"time"

	"github.com/mechtrack/mechauth/password"
)

const (
	testOwner    = "garage-owner"
	testPassword = "correct-password-123"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testConfig returns a complete config for the test owner. The hash is
// generated at minimum cost to keep the suite fast.
func testConfig(t *testing.T) Config {
	t.Helper()

	hasher, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	hash, err := hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hashing test password failed: %v", err)
	}

	cfg := defaultConfig()
	cfg.Owner = OwnerConfig{Name: testOwner, PasswordHash: hash}
	cfg.JWT.SigningSecret = testSecret
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *testClock) {
	t.Helper()

	cfg := testConfig(t)
	if mutate != nil {
		mutate(&cfg)
	}

	clock := newTestClock()
	engine, err := New().WithConfig(cfg).WithClock(clock.Now).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, clock
}

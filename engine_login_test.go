package mechauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLogin_SuccessThenValidate(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.Subject != testOwner {
		t.Fatalf("expected subject %q, got %q", testOwner, pair.Subject)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	result, err := engine.Validate(ctx, "Bearer "+pair.AccessToken)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !result.Valid || result.Subject != testOwner {
		t.Fatalf("unexpected validation result: %+v", result)
	}
	if !result.ExpiresAt.Equal(pair.AccessExpiresAt) {
		t.Fatalf("validation expiry %v does not match issued expiry %v", result.ExpiresAt, pair.AccessExpiresAt)
	}
}

func TestLogin_TokenLifetimes(t *testing.T) {
	engine, clock := newTestEngine(t, nil)

	pair, err := engine.Login(context.Background(), testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Both tokens are minted from one now snapshot.
	now := clock.Now()
	if want := now.Add(15 * time.Minute); !pair.AccessExpiresAt.Equal(want) {
		t.Fatalf("expected access expiry %v, got %v", want, pair.AccessExpiresAt)
	}
	if want := now.Add(7 * 24 * time.Hour); !pair.RefreshExpiresAt.Equal(want) {
		t.Fatalf("expected refresh expiry %v, got %v", want, pair.RefreshExpiresAt)
	}
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, wrongPwd := engine.Login(ctx, testOwner, "wrong-password")
	_, unknownUser := engine.Login(ctx, "somebody-else", testPassword)

	if !errors.Is(wrongPwd, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", wrongPwd)
	}
	if !errors.Is(unknownUser, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", unknownUser)
	}
	if wrongPwd.Error() != unknownUser.Error() {
		t.Fatal("failure modes must be indistinguishable")
	}
}

func TestLogin_LockoutAfterThreshold(t *testing.T) {
	engine, clock := newTestEngine(t, nil)
	ctx := WithOrigin(context.Background(), "203.0.113.7")

	// First five failures individually report bad credentials.
	for i := 0; i < 5; i++ {
		_, err := engine.Login(ctx, testOwner, "wrong-password")
		if !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("attempt %d: expected ErrAuthenticationFailed, got %v", i+1, err)
		}
	}

	// The sixth attempt is rejected before credential comparison, even with
	// the correct password.
	_, err := engine.Login(ctx, testOwner, testPassword)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Once the lockout elapses, correct credentials succeed and the counter
	// clears.
	clock.Advance(15*time.Minute + time.Second)
	if _, err := engine.Login(ctx, testOwner, testPassword); err != nil {
		t.Fatalf("expected login after lockout expiry, got %v", err)
	}
	if _, err := engine.Login(ctx, testOwner, testPassword); err != nil {
		t.Fatalf("counter must reset on success, got %v", err)
	}
}

func TestLogin_LockoutIsPerOrigin(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	locked := WithOrigin(context.Background(), "203.0.113.7")
	other := WithOrigin(context.Background(), "198.51.100.9")

	for i := 0; i < 5; i++ {
		_, _ = engine.Login(locked, testOwner, "wrong-password")
	}

	if _, err := engine.Login(locked, testOwner, testPassword); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited for locked origin, got %v", err)
	}
	if _, err := engine.Login(other, testOwner, testPassword); err != nil {
		t.Fatalf("other origins must stay open, got %v", err)
	}
}

func TestLogin_ThrottleThresholdConfigurable(t *testing.T) {
	engine, _ := newTestEngine(t, func(cfg *Config) {
		cfg.Throttle.MaxAttempts = 2
	})
	ctx := context.Background()

	_, _ = engine.Login(ctx, testOwner, "wrong-password")
	_, _ = engine.Login(ctx, testOwner, "wrong-password")

	if _, err := engine.Login(ctx, testOwner, testPassword); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited at threshold 2, got %v", err)
	}
}

func TestLogin_Metrics(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, _ = engine.Login(ctx, testOwner, testPassword)
	_, _ = engine.Login(ctx, testOwner, "wrong-password")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap.Counters[MetricLoginFailure])
	}
}

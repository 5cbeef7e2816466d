package mechauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mechtrack/mechauth/internal/stores"
)

func TestRefresh_RotatesPair(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rotated, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.Subject != testOwner {
		t.Fatalf("expected subject %q, got %q", testOwner, rotated.Subject)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatal("rotation must issue a fresh refresh token")
	}

	// The rotated pair is fully usable.
	if _, err := engine.Validate(ctx, "Bearer "+rotated.AccessToken); err != nil {
		t.Fatalf("rotated access token failed validation: %v", err)
	}
	if _, err := engine.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated refresh token failed exchange: %v", err)
	}
}

func TestRefresh_SingleUse(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on second use, got %v", err)
	}
}

func TestRefresh_RevokedTokenRejected(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := engine.Revoke(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after revocation, got %v", err)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	// Absent tokens, garbage, even unverifiable strings: Revoke never fails.
	if err := engine.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("Revoke of absent token failed: %v", err)
	}

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := engine.Revoke(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := engine.Revoke(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// An access token verifies cryptographically but carries the wrong
	// purpose.
	if _, err := engine.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}

func TestRefresh_GarbageRejected(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	if _, err := engine.Refresh(context.Background(), "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefresh_StoreIsLivenessAuthority(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Drop the record behind the engine's back. The signature still
	// verifies, but the store no longer vouches for the token.
	if _, err := engine.refreshStore.Remove(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for token absent from store, got %v", err)
	}
}

func TestRefresh_SubjectMismatchRejected(t *testing.T) {
	engine, clock := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Corrupt the record: the signed subject no longer matches the stored one.
	if err := engine.refreshStore.Put(ctx, pair.RefreshToken, RefreshRecord{
		Subject:   "somebody-else",
		ExpiresAt: clock.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on subject mismatch, got %v", err)
	}

	// The corrupted record is removed defensively.
	if _, live, _ := engine.refreshStore.Get(ctx, pair.RefreshToken); live {
		t.Fatal("mismatched record must be removed")
	}
}

func TestRefresh_ExpiredTokenRejected(t *testing.T) {
	engine, clock := newTestEngine(t, nil)
	ctx := context.Background()

	pair, err := engine.Login(ctx, testOwner, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	clock.Advance(7*24*time.Hour + time.Minute)

	if _, err := engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestRefresh_SweepRemovesExpiredRecords(t *testing.T) {
	engine, clock := newTestEngine(t, nil)
	ctx := context.Background()

	mem, ok := engine.refreshStore.(*stores.Memory)
	if !ok {
		t.Fatal("expected the default in-memory store")
	}

	// Seed a record that is already past expiry.
	if err := mem.Put(ctx, "stale", RefreshRecord{
		Subject:   testOwner,
		ExpiresAt: clock.Now().Add(-time.Minute),
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Any mutating flow triggers the sweep.
	if _, err := engine.Login(ctx, testOwner, testPassword); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, live, _ := mem.Get(ctx, "stale"); live {
		t.Fatal("stale record must be swept on login")
	}
	if got := engine.MetricsSnapshot().Counters[MetricSweepRemoved]; got != 1 {
		t.Fatalf("expected sweep counter 1, got %d", got)
	}
}

package mechauth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	internalaudit "github.com/mechtrack/mechauth/internal/audit"
	"github.com/mechtrack/mechauth/internal/throttle"
	"github.com/mechtrack/mechauth/jwt"
	"github.com/mechtrack/mechauth/password"
)

// bearerScheme is the expected Authorization header prefix for Validate.
const bearerScheme = "Bearer "

// Engine orchestrates the login, refresh, revoke, and validate flows over the
// configured credential, throttle, issuer, and refresh store. Engine
// instances are immutable after [Builder.Build] and safe for concurrent use.
type Engine struct {
	config       Config
	issuer       *jwt.Manager
	hasher       *password.Bcrypt
	refreshStore RefreshStore
	throttle     LoginThrottle
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	now          func() time.Time
}

// Close stops the audit dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded due to a full
// buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricAdd(id MetricID, n uint64) {
	if e == nil {
		return
	}
	e.metrics.Add(id, n)
}

// Login authenticates the owner credential and issues an access+refresh
// token pair. The origin key attached via [WithOrigin] is throttled: after
// the configured number of consecutive failures, further attempts from that
// origin fail with [ErrRateLimited] until the lockout elapses, before any
// credential comparison happens. A failed comparison is always recorded,
// whether or not the caller inspects the returned error.
func (e *Engine) Login(ctx context.Context, username, pass string) (*TokenPair, error) {
	if e == nil || e.refreshStore == nil {
		return nil, ErrEngineNotReady
	}

	origin := originFromContext(ctx)

	if err := e.throttle.CheckAllowed(ctx, origin); err != nil {
		if errors.Is(err, throttle.ErrLocked) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, EventLogin, false, username, origin, ErrRateLimited)
			return nil, ErrRateLimited
		}
		return nil, err
	}

	if !e.validateCredentials(username, pass) {
		// Record before returning: the throttle must see this failure even
		// if the caller discards the response.
		if err := e.throttle.RecordFailure(ctx, origin); err != nil {
			log.Print("mechauth: login failure record failed")
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLogin, false, username, origin, ErrAuthenticationFailed)
		return nil, ErrAuthenticationFailed
	}

	if err := e.throttle.Reset(ctx, origin); err != nil {
		log.Print("mechauth: login throttle reset failed")
	}

	pair, err := e.issuePair(ctx, e.config.Owner.Name)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, EventLogin, true, pair.Subject, origin, nil)

	return pair, nil
}

// Refresh exchanges a live refresh token for a new access+refresh pair. The
// presented token must verify cryptographically, carry the refresh purpose,
// and still be live in the store; it is consumed in the exchange, so a second
// call with the same token fails with [ErrTokenInvalid]. When two calls race
// on one token, exactly one wins.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.refreshStore == nil {
		return nil, ErrEngineNotReady
	}

	origin := originFromContext(ctx)

	claims, err := e.issuer.Parse(refreshToken)
	if err != nil || claims.Purpose != jwt.PurposeRefresh {
		return nil, e.failRefresh(ctx, "", origin)
	}

	rec, live, err := e.refreshStore.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !live || !rec.ExpiresAt.After(e.now()) {
		// The store is the liveness authority; drop whatever is left behind.
		if live {
			_, _ = e.refreshStore.Remove(ctx, refreshToken)
		}
		return nil, e.failRefresh(ctx, claims.Subject, origin)
	}
	if rec.Subject != claims.Subject {
		// Signed subject and stored subject disagree: store corruption.
		log.Print("mechauth: refresh record subject mismatch")
		_, _ = e.refreshStore.Remove(ctx, refreshToken)
		return nil, e.failRefresh(ctx, claims.Subject, origin)
	}

	removed, err := e.refreshStore.Remove(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !removed {
		// A concurrent exchange consumed the token first.
		return nil, e.failRefresh(ctx, claims.Subject, origin)
	}

	pair, err := e.issuePair(ctx, claims.Subject)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, EventRefresh, true, pair.Subject, origin, nil)

	return pair, nil
}

func (e *Engine) failRefresh(ctx context.Context, subject, origin string) error {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, EventRefresh, false, subject, origin, ErrTokenInvalid)
	return ErrTokenInvalid
}

// Revoke removes a refresh token from the store. No signature check is
// performed: revocation must succeed even for a token that no longer
// verifies, for example after a signing secret rotation. Revoking an absent
// token is a no-op.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil || e.refreshStore == nil {
		return ErrEngineNotReady
	}

	if _, err := e.refreshStore.Remove(ctx, refreshToken); err != nil {
		return err
	}

	e.metricInc(MetricRevoke)
	e.emitAudit(ctx, EventRevoke, true, "", originFromContext(ctx), nil)

	return nil
}

// Validate checks an Authorization header value and returns the subject and
// expiry of the access token it carries. The header must use the Bearer
// scheme and the token must verify, be unexpired, and carry the access
// purpose; a refresh token presented as a bearer credential is rejected.
// The refresh store is not consulted: access tokens are stateless.
func (e *Engine) Validate(ctx context.Context, authHeader string) (*TokenValidation, error) {
	if e == nil || e.issuer == nil {
		return nil, ErrEngineNotReady
	}

	origin := originFromContext(ctx)

	if !strings.HasPrefix(authHeader, bearerScheme) {
		return nil, e.failValidate(ctx, origin)
	}

	claims, err := e.issuer.Parse(strings.TrimPrefix(authHeader, bearerScheme))
	if err != nil || claims.Purpose != jwt.PurposeAccess {
		return nil, e.failValidate(ctx, origin)
	}

	e.metricInc(MetricValidateSuccess)
	e.emitAudit(ctx, EventValidate, true, claims.Subject, origin, nil)

	return &TokenValidation{
		Valid:     true,
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (e *Engine) failValidate(ctx context.Context, origin string) error {
	e.metricInc(MetricValidateFailure)
	e.emitAudit(ctx, EventValidate, false, "", origin, ErrTokenInvalid)
	return ErrTokenInvalid
}

// validateCredentials compares the submitted credential against the
// configured owner. Unknown usernames still pay the hash comparison so the
// two failure modes stay indistinguishable to the caller.
func (e *Engine) validateCredentials(username, pass string) bool {
	match, err := e.hasher.Verify(e.config.Owner.PasswordHash, pass)
	if err != nil {
		log.Print("mechauth: owner password hash unusable")
		return false
	}
	return username == e.config.Owner.Name && match
}

// issuePair mints an access+refresh pair from a single now snapshot, records
// the refresh token's liveness, and runs the opportunistic expiry sweep.
func (e *Engine) issuePair(ctx context.Context, subject string) (*TokenPair, error) {
	now := e.now()

	access, accessExp, err := e.issuer.Issue(subject, jwt.PurposeAccess, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := e.issuer.Issue(subject, jwt.PurposeRefresh, now)
	if err != nil {
		return nil, err
	}

	if err := e.refreshStore.Put(ctx, refresh, RefreshRecord{
		Subject:   subject,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	e.sweep(ctx)

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		Subject:          subject,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// sweep removes expired refresh records. It runs after every mutating flow
// instead of on a timer, trading amortized cost per call for zero background
// goroutines.
func (e *Engine) sweep(ctx context.Context) {
	removed, err := e.refreshStore.SweepExpired(ctx, e.now())
	if err != nil {
		log.Print("mechauth: refresh store sweep failed")
		return
	}
	if removed > 0 {
		e.metricAdd(MetricSweepRemoved, uint64(removed))
	}
}

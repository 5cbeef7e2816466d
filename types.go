package mechauth

import (
	"io"
	"time"

	internalaudit "github.com/mechtrack/mechauth/internal/audit"
	"github.com/mechtrack/mechauth/internal/stores"
	"github.com/mechtrack/mechauth/internal/throttle"
)

// TokenPair is returned by [Engine.Login] and [Engine.Refresh]. Both tokens
// share a single issuance instant; the expiries differ by the configured
// access and refresh TTLs.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	Subject          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenValidation is returned by [Engine.Validate] for a bearer header that
// carried a live access token.
type TokenValidation struct {
	Valid     bool
	Subject   string
	ExpiresAt time.Time
}

// RefreshRecord is the liveness entry tracked per outstanding refresh token.
type RefreshRecord = stores.Record

// RefreshStore tracks which refresh tokens are currently exchangeable.
// Implementations must be safe for concurrent use; the in-memory and
// Redis-backed defaults are selected by [Builder.Build], and callers may
// inject their own via [Builder.WithRefreshStore].
type RefreshStore = stores.Store

// LoginThrottle gates login attempts per origin key. Callers may inject
// their own via [Builder.WithThrottle].
type LoginThrottle = throttle.Throttle

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

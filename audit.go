package mechauth

import (
	"context"

	internalaudit "github.com/mechtrack/mechauth/internal/audit"
)

// Audit event types emitted by the engine.
const (
	// EventLogin is an exported constant or variable used by the authentication engine.
	EventLogin = "login"
	// EventRefresh is an exported constant or variable used by the authentication engine.
	EventRefresh = "refresh"
	// EventRevoke is an exported constant or variable used by the authentication engine.
	EventRevoke = "revoke"
	// EventValidate is an exported constant or variable used by the authentication engine.
	EventValidate = "validate"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, subject, origin string, cause error) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		Subject:   subject,
		Origin:    origin,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}

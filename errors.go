package mechauth

import "errors"

var (
	// ErrAuthenticationFailed reports bad credentials. Unknown-owner and
	// wrong-password are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrRateLimited reports that the calling origin is locked out after
	// repeated login failures.
	ErrRateLimited = errors.New("login rate limited")
	// ErrTokenInvalid reports a token that failed verification: bad
	// signature, malformed, expired, wrong purpose, or no longer live.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

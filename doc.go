// Package mechauth provides the authentication core for a single-operator
// backend: owner login against a configured bcrypt credential, JWT access
// tokens, rotating single-use refresh tokens, and per-origin login lockout.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// mechauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (TokenPair, TokenValidation, MetricsSnapshot). Signing
// lives in jwt/, credential hashing in password/, and store implementations
// under internal/. The HTTP layer that fronts the engine is a consumer, not
// part of this module; middleware/ offers an optional net/http adapter.
//
// # What this package must NOT do
//
//   - Persist anything beyond the configured refresh store backend.
//   - Expose store internals or signing material in its public API.
//   - Import any sub-package that re-imports mechauth (no import cycles).
//
// # Performance contract
//
// Validate is the hot path: a signature check plus claim validation, no store
// round-trips. Login and Refresh are allowed one store round-trip per call
// plus the opportunistic expiry sweep.
package mechauth

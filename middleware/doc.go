// Package middleware exposes an HTTP adapter that enforces access token
// validation on wrapped handlers using mechauth.Engine.
//
// [Guard] reads the Authorization header, calls Engine.Validate, and injects
// the authenticated subject into the request context, retrievable with
// [SubjectFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Validate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the refresh store.
//   - Make authorization decisions beyond pass/reject from Engine.Validate.
package middleware

// Package throttle implements the per-origin login failure throttle.
//
// Each origin key moves between two states: open and locked. Crossing the
// configured failure threshold locks the key for the lockout duration; the
// transition back to open happens lazily on the next check, never via a
// timer. A successful login resets the key entirely.
//
// # What this package must NOT do
//
//   - Inspect credentials or tokens.
//   - Import the root package.
package throttle

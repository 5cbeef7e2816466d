// Package jwt implements signing and verification for the engine's access
// and refresh tokens.
//
// Tokens are HS256-signed with a shared symmetric secret and carry the owner
// subject, a purpose discriminator, and issued-at/expiry claims. Purpose is
// part of the signed payload: an access token can never be replayed where a
// refresh token is required, and vice versa.
//
// # Architecture boundaries
//
// This package owns token structure and cryptographic validity. Liveness of
// refresh tokens (rotation, revocation) is the refresh store's concern and
// lives in the root engine.
//
// # What this package must NOT do
//
//   - Access the refresh store or any I/O.
//   - Import the root package.
package jwt

// Package password implements one-way hashing and verification for the
// owner credential.
//
// Hashes use bcrypt with an embedded per-hash salt. The engine only ever
// verifies: the owner hash is precomputed by the operator (see
// cmd/mechauth-hash) and supplied through configuration. Plaintext passwords
// are never stored or logged.
package password

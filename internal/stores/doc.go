// Package stores implements the refresh token liveness store.
//
// The store is the single authority on whether a refresh token is still
// exchangeable. A token absent from the store is dead regardless of its
// signature. Remove reports whether it deleted a live record, which is what
// gives concurrent rotation of the same token exactly one winner.
//
// # What this package must NOT do
//
//   - Parse or verify token signatures; tokens are opaque keys here.
//   - Import the root package.
package stores

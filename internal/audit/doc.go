// Package audit implements the internal audit event model and the buffered
// asynchronous dispatcher that forwards events to a caller-provided sink.
//
// # Architecture boundaries
//
// This package owns the event shape and delivery semantics. What gets audited,
// and when, is decided by the engine in the root package. Root-level APIs
// re-export the public types via aliases.
//
// # What this package must NOT do
//
//   - Import the root package or any of its sub-packages.
//   - Perform I/O beyond what the configured sink does.
//   - Block engine flows: Emit must return promptly when DropIfFull is set.
package audit

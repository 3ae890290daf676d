// Package audit implements async delivery of serialized audit documents.
//
// # Components
//
//   - [Sink]: interface for message consumers.
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Message]: serialized document bytes plus the topic they are addressed to.
//
// # Architecture boundaries
//
// This package owns buffering and sink invocation. It does NOT build or
// serialize documents; that belongs to the root package.
//
// # What this package must NOT do
//
//   - Inspect or rewrite payloads.
//   - Import goAudit or any sibling package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit

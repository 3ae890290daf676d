// Package goAudit builds structured audit events as JSON documents and
// delivers them to sinks.
//
// A [Document] is an ordered JSON object or array assembled through typed
// encoders (AddInt, AddString, AddAddress, AddSID, AddGUID, AddTimestamp and
// friends). Encoders never return errors. The first fault marks the document
// errored, every later call becomes a no-op, and [Document.Serialize] reports
// the fault. An errored document is never emitted.
//
// An [Emitter], assembled with [Builder.Build], serializes finished documents
// and hands them to a [Sink]: a Redis stream, a signing wrapper, a log, or a
// caller-supplied implementation. Delivery runs synchronously or through a
// buffered dispatcher.
//
// # Architecture boundaries
//
// The root package owns the document model, encoders, [Config], metrics and
// the Emitter. Value types live in address, sid and guid. Delivery backends
// live in stream and seal, and the async relay in internal/audit.
//
// # What this package must NOT do
//
//   - Perform I/O while building documents. Only Emitter methods reach sinks.
//   - Keep global JSON or encoder state. Clocks, zones and the UTF-8 policy
//     are per-document Options.
//   - Share a Document between goroutines. Documents have a single owner.
package goAudit

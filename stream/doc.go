// Package stream delivers serialized audit documents to Redis streams.
//
// Each topic maps to the stream "<prefix>:<topic>". Entries carry the
// event JSON in a single "payload" field so consumers can read them with
// XRANGE or consumer groups without knowing the document schema.
//
// # What this package must NOT do
//
//   - Parse or rewrite payloads.
//   - Create consumer groups or acknowledge entries; consumers own that.
package stream

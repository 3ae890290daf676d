// Package seal turns serialized audit documents into signed JWS tokens so a
// consumer can tell that an event left the producer unmodified.
//
// A sealed token carries the event JSON verbatim in the "evt" claim, the
// delivery topic, a random jti, the issuer and the issue time. [Sealer.Open]
// pins the algorithm, resolves the kid against the configured verify keys
// and checks the issuer.
//
// # What this package must NOT do
//
//   - Build or modify audit documents.
//   - Store keys; callers supply them through [Config].
package seal

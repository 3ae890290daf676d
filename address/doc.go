// Package address models the network endpoints recorded in audit events.
//
// An [Address] is either an inet endpoint (IPv4 or IPv6 host plus port) or a
// local socket path. [Address.Canonical] renders the family-tagged text used
// in audit documents; IPv6 hosts are compressed per RFC 5952.
//
// # What this package must NOT do
//
//   - Resolve host names or touch the network.
//   - Import goAudit or any sibling package.
package address

// Package stun resolves the client's primary public address by sending a
// STUN Binding Request to the configured discovery servers and reading back
// the XOR-MAPPED-ADDRESS attribute.
//
// The lookup is best-effort: servers are tried in order, the first success
// wins, and a total failure is reported to the caller, who substitutes the
// Unknown sentinel in the report.
package stun

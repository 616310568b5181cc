// Package ice parses ICE candidate strings harvested during collection.
//
// Extraction is a pure function over a single candidate line: it pulls out
// every embedded IPv4/IPv6 literal, the candidate-type token following "typ",
// and any mDNS ".local" pseudo-hostname. Malformed input yields zero
// extractions and never an error. Deduplication is the caller's concern.
package ice

package ice

import (
	"net/netip"
	"regexp"
	"strings"
)

// ipv4Pattern matches dotted-quad literals embedded in longer tokens such as
// "192.0.2.1:3478". Candidates place bare addresses in their own tokens, but
// raddr/rport attributes and TURN URIs can glue them to ports.
var ipv4Pattern = regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`)

// typPattern captures the candidate-type token following the "typ" keyword,
// per the ICE candidate grammar (host, srflx, prflx, relay).
var typPattern = regexp.MustCompile(`(?:^|\s)typ\s+([A-Za-z]+)`)

// mdnsPattern matches mDNS pseudo-hostnames substituted for local addresses.
var mdnsPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9\-]*(?:\.[A-Za-z0-9\-]+)*\.local\b`)

// tokenSeparators are the characters candidate lines use between fields.
const tokenSeparators = " \t\r\n\"',[]"

// Extraction is the result of parsing one raw candidate string.
type Extraction struct {
	// Addresses holds every IPv4/IPv6 literal found, in order of
	// appearance. Zone suffixes on link-local literals are preserved.
	Addresses []string

	// Type is the candidate-type token, empty when absent.
	Type string

	// Hostname is the mDNS local-discovery hostname, empty when absent.
	Hostname string
}

// Extract parses a raw candidate string. It never fails: a malformed or
// unrelated string simply yields an empty Extraction.
func Extract(candidate string) Extraction {
	var ex Extraction

	seen := make(map[string]struct{})
	add := func(literal string) {
		if _, ok := seen[literal]; ok {
			return
		}
		seen[literal] = struct{}{}
		ex.Addresses = append(ex.Addresses, literal)
	}

	for _, token := range strings.FieldsFunc(candidate, isSeparator) {
		// A full-token parse covers every IPv6 textual form: expanded,
		// compressed "::", IPv4-mapped, and zone-suffixed link-local.
		if _, err := netip.ParseAddr(token); err == nil {
			add(token)
			continue
		}
		// Not a bare literal; scan for IPv4 forms glued to ports or paths.
		for _, m := range ipv4Pattern.FindAllString(token, -1) {
			if _, err := netip.ParseAddr(m); err == nil {
				add(m)
			}
		}
	}

	if m := typPattern.FindStringSubmatch(candidate); m != nil {
		ex.Type = m[1]
	}
	if m := mdnsPattern.FindString(candidate); m != "" {
		ex.Hostname = m
	}

	return ex
}

func isSeparator(r rune) bool {
	return strings.ContainsRune(tokenSeparators, r)
}

package model

import (
	"net/netip"
	"strings"
)

// Family identifies the IP protocol family of an address literal.
type Family string

// Address families derived from the literal's textual form.
const (
	FamilyIPv4 Family = "v4"
	FamilyIPv6 Family = "v6"
)

// Scope is the classification of an address literal.
type Scope string

// Address scopes.
//
// ScopePrivate covers RFC 1918 IPv4 ranges and IPv6 Unique Local Addresses
// (fc00::/7). Link-local fe80::/10 is deliberately NOT private under this
// policy; leaking a link-local address is still reported as exposure.
const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
	ScopeUnknown Scope = "unknown"
)

// Address is an immutable IPv4 or IPv6 literal with its derived attributes.
// The family and scope are computed once at construction and never depend on
// geolocation data.
type Address struct {
	// Literal is the textual form exactly as extracted from the candidate.
	Literal string `json:"literal"`

	// Family is v4 or v6, derived from the literal.
	Family Family `json:"family"`

	// Scope is public, private, or unknown.
	Scope Scope `json:"scope"`
}

// NewAddress builds an Address from a literal, deriving family and scope.
// The literal is stored verbatim, including any zone suffix.
func NewAddress(literal string) Address {
	return Address{
		Literal: literal,
		Family:  familyOf(literal),
		Scope:   Classify(literal),
	}
}

// IsPrivate reports whether the address falls in a private/local range.
func (a Address) IsPrivate() bool {
	return a.Scope == ScopePrivate
}

// familyOf derives the protocol family from the literal's textual form.
// Anything containing a colon is IPv6, including IPv4-mapped forms.
func familyOf(literal string) Family {
	if strings.Contains(literal, ":") {
		return FamilyIPv6
	}
	return FamilyIPv4
}

// Classify labels an address literal without any network access.
//
// IPv4 is private iff the first octet is 10, or 172 with a second octet in
// [16,31], or 192 with a second octet of 168. IPv6 is private iff the literal
// starts with "fc" or "fd" (case-insensitive), the Unique Local Address
// range. Everything else, including fe80::/10 link-local, is public.
// Unparseable literals classify as unknown.
func Classify(literal string) Scope {
	if strings.Contains(literal, ":") {
		return classifyIPv6(literal)
	}
	return classifyIPv4(literal)
}

func classifyIPv4(literal string) Scope {
	addr, err := netip.ParseAddr(literal)
	if err != nil || !addr.Is4() {
		return ScopeUnknown
	}
	octets := addr.As4()
	switch {
	case octets[0] == 10:
		return ScopePrivate
	case octets[0] == 172 && octets[1] >= 16 && octets[1] <= 31:
		return ScopePrivate
	case octets[0] == 192 && octets[1] == 168:
		return ScopePrivate
	}
	return ScopePublic
}

func classifyIPv6(literal string) Scope {
	if len(literal) < 2 {
		return ScopeUnknown
	}
	prefix := strings.ToLower(literal[:2])
	if prefix == "fc" || prefix == "fd" {
		return ScopePrivate
	}
	return ScopePublic
}

// UniqueAddressSet is an insertion-ordered set of addresses observed during a
// run. Adding an already-seen literal is a no-op, so the set never contains
// the same literal twice regardless of how many candidate events repeat it.
//
// The set is not safe for concurrent use; the pipeline only touches it after
// the collection window has been torn down.
type UniqueAddressSet struct {
	order []Address
	seen  map[string]struct{}
}

// NewUniqueAddressSet returns an empty set.
func NewUniqueAddressSet() *UniqueAddressSet {
	return &UniqueAddressSet{seen: make(map[string]struct{})}
}

// Add inserts the address and reports whether it was newly added.
func (s *UniqueAddressSet) Add(a Address) bool {
	if _, ok := s.seen[a.Literal]; ok {
		return false
	}
	s.seen[a.Literal] = struct{}{}
	s.order = append(s.order, a)
	return true
}

// Contains reports whether the literal has been observed.
func (s *UniqueAddressSet) Contains(literal string) bool {
	_, ok := s.seen[literal]
	return ok
}

// Len returns the number of unique addresses.
func (s *UniqueAddressSet) Len() int {
	return len(s.order)
}

// Addresses returns the members in insertion order.
// The returned slice is a copy; mutating it does not affect the set.
func (s *UniqueAddressSet) Addresses() []Address {
	out := make([]Address, len(s.order))
	copy(out, s.order)
	return out
}

package model

import "testing"

// TestClassify pins the documented classification policy, including the
// deliberate decision that fe80::/10 link-local addresses are not private.
func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		literal string
		want    Scope
	}{
		{"10.0.0.1", ScopePrivate},
		{"172.16.0.0", ScopePrivate},
		{"172.31.255.255", ScopePrivate},
		{"172.32.0.0", ScopePublic},
		{"172.15.0.0", ScopePublic},
		{"192.168.0.1", ScopePrivate},
		{"193.168.0.1", ScopePublic},
		{"8.8.8.8", ScopePublic},
		{"203.0.113.9", ScopePublic},
		{"fc00::1", ScopePrivate},
		{"fd12::1", ScopePrivate},
		{"FD12:3456::1", ScopePrivate},
		{"fe80::1", ScopePublic},
		{"2001:db8::1", ScopePublic},
		{"::ffff:192.168.1.5", ScopePublic},
		{"not-an-address", ScopeUnknown},
		{"999.1.1.1", ScopeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			t.Parallel()

			if got := Classify(tt.literal); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.literal, got, tt.want)
			}
		})
	}
}

// TestNewAddress tests family and scope derivation.
func TestNewAddress(t *testing.T) {
	t.Parallel()

	t.Run("ipv4", func(t *testing.T) {
		t.Parallel()

		a := NewAddress("192.168.1.5")
		if a.Family != FamilyIPv4 {
			t.Errorf("expected family v4, got %q", a.Family)
		}
		if !a.IsPrivate() {
			t.Error("expected private scope")
		}
		if a.Literal != "192.168.1.5" {
			t.Errorf("literal changed: %q", a.Literal)
		}
	})

	t.Run("ipv6 with zone", func(t *testing.T) {
		t.Parallel()

		a := NewAddress("fe80::1%eth0")
		if a.Family != FamilyIPv6 {
			t.Errorf("expected family v6, got %q", a.Family)
		}
		if a.IsPrivate() {
			t.Error("link-local must not classify private")
		}
	})

	t.Run("unique local", func(t *testing.T) {
		t.Parallel()

		a := NewAddress("fc00::abcd")
		if !a.IsPrivate() {
			t.Error("expected ULA to classify private")
		}
	})
}

// TestUniqueAddressSet verifies insertion idempotence: no literal appears
// twice regardless of repeat occurrences across candidate events.
func TestUniqueAddressSet(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates repeated literals", func(t *testing.T) {
		t.Parallel()

		s := NewUniqueAddressSet()
		if !s.Add(NewAddress("192.168.1.5")) {
			t.Error("first add should report new")
		}
		if s.Add(NewAddress("192.168.1.5")) {
			t.Error("second add should be a no-op")
		}
		if s.Add(NewAddress("192.168.1.5")) {
			t.Error("third add should be a no-op")
		}
		if s.Len() != 1 {
			t.Errorf("expected 1 member, got %d", s.Len())
		}
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		t.Parallel()

		s := NewUniqueAddressSet()
		s.Add(NewAddress("203.0.113.9"))
		s.Add(NewAddress("192.168.1.5"))
		s.Add(NewAddress("203.0.113.9"))
		s.Add(NewAddress("fc00::1"))

		got := s.Addresses()
		want := []string{"203.0.113.9", "192.168.1.5", "fc00::1"}
		if len(got) != len(want) {
			t.Fatalf("expected %d members, got %d", len(want), len(got))
		}
		for i, w := range want {
			if got[i].Literal != w {
				t.Errorf("position %d: expected %q, got %q", i, w, got[i].Literal)
			}
		}
	})

	t.Run("contains", func(t *testing.T) {
		t.Parallel()

		s := NewUniqueAddressSet()
		s.Add(NewAddress("8.8.8.8"))
		if !s.Contains("8.8.8.8") {
			t.Error("expected Contains to report member")
		}
		if s.Contains("1.1.1.1") {
			t.Error("expected Contains to reject non-member")
		}
	})
}

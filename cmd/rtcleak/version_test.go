package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestBuildMetadata tests version metadata resolution.
func TestBuildMetadata(t *testing.T) {
	ver, rev, built := buildMetadata()
	if ver == "" || rev == "" || built == "" {
		t.Errorf("expected non-empty metadata, got %q %q %q", ver, rev, built)
	}

	origVer, origRev, origBuilt := version, commit, date
	t.Cleanup(func() { version, commit, date = origVer, origRev, origBuilt })
	version = "v1.2.3"
	commit = "0123456789abcdef"
	date = "2026-01-02"

	ver, rev, built = buildMetadata()
	if ver != "v1.2.3" {
		t.Errorf("ldflags version must win, got %q", ver)
	}
	if rev != "0123456789abcdef" {
		t.Errorf("ldflags commit must pass through untruncated, got %q", rev)
	}
	if built != "2026-01-02" {
		t.Errorf("ldflags date must win, got %q", built)
	}
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"rtcleak version", "commit:", "built:"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nwtrace/rtcleak/internal/model"
)

// assembledReport builds a small report with one of each block label.
func assembledReport(t *testing.T) *model.ExposureReport {
	t.Helper()

	r := model.NewExposureReport("probe/1.0")
	r.PrimaryAddress = "8.8.8.8"
	r.Addresses.Add(model.NewAddress("192.168.1.5"))
	r.Addresses.Add(model.NewAddress("203.0.113.9"))
	r.TypeByAddress["192.168.1.5"] = "host"
	r.TypeByAddress["203.0.113.9"] = "srflx"
	r.Tally.Inc("host")
	r.Tally.Inc("srflx")
	r.Geo["8.8.8.8"] = model.GeoRecord{
		Country: "United States", City: "Mountain View",
		PostalCode: "94043", TimeZone: "America/Los_Angeles",
	}
	r.AddHostname("abcd1234.local")
	r.AddNote("lookup skipped for private range")
	r.Fingerprint.Set("os", "linux")
	r.Fingerprint.Set("cpu_count", 8)

	if err := Assemble(r); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return r
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	r := assembledReport(t)
	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"Primary Address: 8.8.8.8",
		"[Public-Primary] 8.8.8.8 (v4)",
		"[Local-Private] 192.168.1.5 (v4)",
		"[Leaked] 203.0.113.9 (v4)",
		"Candidate Types: host=1 srflx=1",
		"Local Hostnames: abcd1234.local",
		"Country: United States",
		"Country: Unknown",
		"os: linux",
		"- lookup skipped for private range",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes with working state excluded", func(t *testing.T) {
		t.Parallel()

		r := assembledReport(t)
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["primary_address"] != "8.8.8.8" {
			t.Errorf("unexpected primary_address: %v", decoded["primary_address"])
		}
		if blocks, ok := decoded["addresses"].([]any); !ok || len(blocks) != 3 {
			t.Errorf("expected 3 address blocks, got %v", decoded["addresses"])
		}
		// Working state is pipeline-internal.
		for _, key := range []string{"RawCandidates", "Addresses", "TypeByAddress", "Geo"} {
			if _, ok := decoded[key]; ok {
				t.Errorf("working state %q leaked into serialized report", key)
			}
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		r := assembledReport(t)
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	r := assembledReport(t)
	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Network Exposure Report",
		"## Addresses",
		"`8.8.8.8`",
		"Public-Primary",
		"Local-Private",
		"## Platform",
		"## Notes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	r := assembledReport(t)
	var a, b bytes.Buffer
	n, err := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b)).Write(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("both destinations must receive output")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("expected total %d, got %d", a.Len()+b.Len(), n)
	}
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nwtrace/rtcleak/internal/model"
)

// Render produces the canonical plain-text form of an assembled report. This
// is the exact payload the sink delivers, so the layout is stable: header
// lines, one block per address, fingerprint, then notes.
func Render(r *model.ExposureReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Exposure Report %s ===\n", r.RunID)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Client: %s\n", r.ClientID)
	fmt.Fprintf(&b, "Primary Address: %s\n", r.PrimaryAddress)
	if r.CapabilityAbsent {
		b.WriteString("Capability: real-time communication unavailable\n")
	}

	if len(r.Tally) > 0 {
		b.WriteString("Candidate Types:")
		for _, label := range sortedTallyLabels(r.Tally) {
			fmt.Fprintf(&b, " %s=%d", label, r.Tally[label])
		}
		b.WriteByte('\n')
	}
	if len(r.LocalHostnames) > 0 {
		fmt.Fprintf(&b, "Local Hostnames: %s\n", strings.Join(r.LocalHostnames, ", "))
	}

	for _, block := range r.Blocks {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "[%s] %s (%s)\n", block.Label, block.Address, block.Family)
		if block.CandidateType != "" {
			fmt.Fprintf(&b, "  Candidate Type: %s\n", block.CandidateType)
		}
		writeGeo(&b, block.Geo)
	}

	if r.Fingerprint != nil && r.Fingerprint.Len() > 0 {
		b.WriteString("\nPlatform:\n")
		for _, name := range r.Fingerprint.Names() {
			v, _ := r.Fingerprint.Get(name)
			fmt.Fprintf(&b, "  %s: %v\n", name, v)
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range r.Notes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	return b.String()
}

// writeGeo renders one geolocation record. Sentinel values print verbatim so
// missing data stays visible.
func writeGeo(b *strings.Builder, g model.GeoRecord) {
	fmt.Fprintf(b, "  Country: %s\n", g.Country)
	fmt.Fprintf(b, "  City: %s\n", g.City)
	fmt.Fprintf(b, "  Postal Code: %s\n", g.PostalCode)
	fmt.Fprintf(b, "  Time Zone: %s\n", g.TimeZone)
	fmt.Fprintf(b, "  Coordinates: %g, %g\n", g.Latitude, g.Longitude)
	fmt.Fprintf(b, "  Proxy/VPN: %t\n", g.Proxy)
	if g.Org != "" {
		fmt.Fprintf(b, "  Org: %s\n", g.Org)
	}
	if g.Network != "" {
		fmt.Fprintf(b, "  Network: %s\n", g.Network)
	}
	if g.Err != "" {
		fmt.Fprintf(b, "  Lookup Error: %s\n", g.Err)
	}
}

// sortedTallyLabels returns tally labels in lexical order for stable output.
func sortedTallyLabels(t model.CandidateTypeTally) []string {
	labels := make([]string, 0, len(t))
	for label := range t {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// TextWriter outputs reports in the canonical plain-text format.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in plain-text format.
func (w *TextWriter) Write(report *model.ExposureReport) (int, error) {
	return io.WriteString(w.output, Render(report))
}

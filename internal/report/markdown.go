package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nwtrace/rtcleak/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for documentation and
// sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExposureReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAddresses(md, report)
	w.writeFingerprint(md, report)
	w.writeNotes(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.ExposureReport) {
	md.H1("Network Exposure Report")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + r.RunID + "`"},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Client", r.ClientID},
		{"Primary Address", "`" + r.PrimaryAddress + "`"},
		{"Addresses Observed", strconv.Itoa(len(r.Blocks))},
	}
	if r.CapabilityAbsent {
		rows = append(rows, []string{"Capability", "real-time communication unavailable"})
	}
	if len(r.LocalHostnames) > 0 {
		rows = append(rows, []string{"Local Hostnames", strings.Join(r.LocalHostnames, ", ")})
	}
	for _, label := range sortedTallyLabels(r.Tally) {
		rows = append(rows, []string{"Candidates (" + label + ")", strconv.Itoa(r.Tally[label])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAddresses writes one table row per address block.
func (w *MarkdownWriter) writeAddresses(md *markdown.Markdown, r *model.ExposureReport) {
	if len(r.Blocks) == 0 {
		return
	}

	md.H2("Addresses")
	rows := make([][]string, 0, len(r.Blocks))
	for _, block := range r.Blocks {
		rows = append(rows, []string{
			"`" + block.Address + "`",
			string(block.Family),
			string(block.Label),
			block.CandidateType,
			block.Geo.Country,
			block.Geo.City,
			fmt.Sprintf("%t", block.Geo.Proxy),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Address", "Family", "Label", "Type", "Country", "City", "Proxy"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFingerprint writes the platform capability table.
func (w *MarkdownWriter) writeFingerprint(md *markdown.Markdown, r *model.ExposureReport) {
	if r.Fingerprint == nil || r.Fingerprint.Len() == 0 {
		return
	}

	md.H2("Platform")
	rows := make([][]string, 0, r.Fingerprint.Len())
	for _, name := range r.Fingerprint.Names() {
		v, _ := r.Fingerprint.Get(name)
		rows = append(rows, []string{name, fmt.Sprintf("%v", v)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Capability", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeNotes writes absorbed-failure notes as a bullet list.
func (w *MarkdownWriter) writeNotes(md *markdown.Markdown, r *model.ExposureReport) {
	if len(r.Notes) == 0 {
		return
	}
	md.H2("Notes")
	md.BulletList(r.Notes...)
	md.PlainText("")
}

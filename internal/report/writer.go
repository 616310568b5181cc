package report

import (
	"io"

	"github.com/nwtrace/rtcleak/internal/model"
)

// Writer defines the interface for report output. Implementations render an
// assembled exposure report to their configured destination.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ExposureReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, for example to both
// the terminal and a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers. Returns the total bytes
// written across all writers. Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ExposureReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the common output destination for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

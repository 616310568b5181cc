// Package report assembles the composite exposure report and renders it.
//
// The assembler folds the run's working state (candidate buffer, address set,
// geolocation records, fingerprint) into the final block list exactly once per
// run. Writers render the assembled report as plain text, JSON, or Markdown;
// the sink delivers the canonical text rendering to the configured collection
// endpoint in a single attempt.
package report

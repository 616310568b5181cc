// Package model defines the data structures shared across the probe pipeline:
// network addresses and their classification, the unique address set collected
// during a run, per-address geolocation records, the platform fingerprint, and
// the terminal ExposureReport.
//
// All run-scoped mutable state lives inside a single ExposureReport instance
// constructed fresh for each pipeline execution. Nothing in this package is
// shared between runs.
package model

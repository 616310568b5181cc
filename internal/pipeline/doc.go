// Package pipeline orchestrates one probe run as an ordered sequence of
// steps: candidate collection, address extraction, primary-address lookup,
// geolocation resolution, and platform fingerprinting.
//
// Steps accumulate working state on a single ExposureReport. Most failures
// are absorbed into the report's notes and the run proceeds; the one fatal
// case is an absent real-time-communication capability, which short-circuits
// to a minimal failure report. The runner assembles the report exactly once
// and delivers it to the sink exactly once per invocation.
package pipeline

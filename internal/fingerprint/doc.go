// Package fingerprint probes platform capabilities to characterize the
// client instance running the probe.
//
// Probing follows an explicit ordered allow-list of (capability, accessor)
// pairs. Each accessor returns an optional value; capabilities that cannot be
// read on the current platform are omitted from the result and are never
// fatal to the run.
package fingerprint

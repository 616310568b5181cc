// Package collector drives WebRTC/ICE negotiation long enough to observe
// local, server-reflexive, and relayed candidate addresses.
//
// One Collect call owns one peer connection: it creates a data channel,
// applies a local offer to trigger gathering, buffers every candidate string
// the ICE agent reports, and after the collection window elapses (or
// gathering completes early) disables the handler and closes the connection.
// Teardown runs on every exit path; negotiation failures are logged and the
// window still elapses, so the run always proceeds to report generation with
// whatever was captured.
package collector

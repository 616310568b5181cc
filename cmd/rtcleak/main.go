// Package main provides the entry point for the rtcleak CLI.
//
// rtcleak probes how much network-address information the local host exposes
// through WebRTC/ICE candidate gathering: local interface addresses, the
// externally visible public address, and relayed addresses, each resolved to
// a coarse geolocation and assembled into a single exposure report.
//
// Usage:
//
//	rtcleak probe
//	rtcleak probe --sink https://collector.example.org/reports
//
// See --help for all available options.
package main

// main is the entry point for rtcleak.
func main() {
	Execute()
}

// Package main provides the entry point for the rtcleak CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for rtcleak.
func NewRootCmd() *cobra.Command {
	ver, _, _ := buildMetadata()
	cmd := &cobra.Command{
		Use:   "rtcleak",
		Short: "Probe network address exposure through WebRTC/ICE",
		Long: `rtcleak measures how much network-address information the local host
exposes through WebRTC/ICE candidate gathering.

One probe run collects candidates for a bounded window, extracts and
classifies every observed address, resolves the public addresses to a coarse
geolocation, and produces a single composite exposure report. The report can
be printed locally and optionally delivered to an HTTP collection endpoint.`,
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewProbeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

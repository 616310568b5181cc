package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildMetadata resolves the version, commit hash, and build date in a
// single pass over the embedded build information. Values injected via
// ldflags win over what the toolchain recorded.
func buildMetadata() (ver, rev, built string) {
	ver, rev, built = version, commit, date

	if info, ok := debug.ReadBuildInfo(); ok {
		if ver == "" {
			ver = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rev == "" {
					rev = s.Value
					if len(rev) > 7 {
						rev = rev[:7]
					}
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			}
		}
	}

	if ver == "" {
		ver = "(devel)"
	}
	if rev == "" {
		rev = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return ver, rev, built
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of rtcleak.`,
		Run: func(cmd *cobra.Command, _ []string) {
			ver, rev, built := buildMetadata()
			fmt.Fprintf(cmd.OutOrStdout(), "rtcleak version %s\n", ver)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", rev)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", built)
		},
	}
}

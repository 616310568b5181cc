package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nwtrace/rtcleak/internal/config"
	"github.com/nwtrace/rtcleak/internal/log"
	"github.com/nwtrace/rtcleak/internal/pipeline"
	"github.com/nwtrace/rtcleak/internal/report"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run one exposure probe and produce a report",
		Long: `Probe runs one full collection window and produces a single exposure report.

The run gathers ICE candidates from the configured discovery servers,
extracts and classifies every observed address, resolves public addresses to
a coarse geolocation, fingerprints the platform, and assembles the composite
report. Lookup and delivery failures are absorbed into the report's notes;
the run only fails outright when the WebRTC capability is unavailable or the
context is cancelled.

Examples:
  # Run a probe and print the text report
  rtcleak probe

  # Deliver the report to a collection endpoint
  rtcleak probe --sink https://collector.example.org/reports

  # Use custom STUN servers and a longer window
  rtcleak probe -s stun.example.org:3478 -w 10s

  # Output JSON to a file
  rtcleak probe --json -o report.json

  # Use a custom configuration file
  rtcleak probe -c myconfig.yaml`,
		Args: cobra.NoArgs,
		RunE: runProbeCmd,
	}

	// Collection flags
	cmd.Flags().DurationP("window", "w", config.DefaultWindow,
		"Candidate collection window")
	cmd.Flags().StringSliceP("stun", "s", nil,
		"STUN server host:port (repeatable, overrides defaults)")

	// Lookup flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultLookupTimeout,
		"Timeout for each geolocation lookup and STUN exchange")
	cmd.Flags().String("geo-endpoint", config.DefaultGeoEndpoint,
		"Geolocation lookup base URL")

	// Delivery flags
	cmd.Flags().String("sink", "",
		"Report delivery endpoint URL (empty disables delivery)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .rtcleak in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("save", false,
		"Save the report under the user data directory")

	// Logging flags
	cmd.Flags().Bool("log-json", false,
		"Emit log records as JSON instead of text")

	return cmd
}

// runProbeCmd executes the probe command.
func runProbeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging through the redacting handler
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	if logJSON {
		logger = log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	out, closeOut, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeOut()

	runner := pipeline.NewRunner(cfg,
		pipeline.WithRunnerLogger(logger),
		pipeline.WithRunnerWriter(selectWriter(cfg, out)),
	)

	if _, err := runner.Run(ctx); err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	return nil
}

// buildConfig creates a Config from cobra command flags and the optional
// YAML configuration file. Flags win over the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the configuration file first so explicit flags override it.
	// An explicitly named file must exist; the default search is optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if cmd.Flags().Changed("window") {
		if cfg.Window, err = cmd.Flags().GetDuration("window"); err != nil {
			return nil, err
		}
	}

	stunServers, err := cmd.Flags().GetStringSlice("stun")
	if err != nil {
		return nil, err
	}
	if len(stunServers) > 0 {
		cfg.STUNServers = stunServers
		uris := make([]string, 0, len(stunServers))
		for _, s := range stunServers {
			if !strings.Contains(s, ":") {
				return nil, fmt.Errorf("invalid STUN server %q: expected host:port", s)
			}
			uris = append(uris, "stun:"+s)
		}
		cfg.ICEServers = []config.ICEServer{{URLs: uris}}
	}

	if cmd.Flags().Changed("timeout") {
		if cfg.LookupTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("geo-endpoint") {
		if cfg.GeoEndpoint, err = cmd.Flags().GetString("geo-endpoint"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("sink") {
		if cfg.SinkURL, err = cmd.Flags().GetString("sink"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	if save && cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(config.DefaultOutputDir(), savedReportName(cfg))
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// savedReportName builds a timestamped file name for --save output.
func savedReportName(cfg *config.Config) string {
	ext := ".txt"
	switch {
	case cfg.JSONReport:
		ext = ".json"
	case cfg.MarkdownReport:
		ext = ".md"
	}
	return "report-" + time.Now().UTC().Format("20060102-150405") + ext
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// openOutput returns the report destination and a cleanup function.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func(), error) {
	if cfg.OutputPath == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	dir := filepath.Dir(cfg.OutputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(cfg.OutputPath) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// selectWriter picks the report writer for the configured output format.
func selectWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewTextWriter(out)
	}
}

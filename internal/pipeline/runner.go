package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nwtrace/rtcleak/internal/collector"
	"github.com/nwtrace/rtcleak/internal/config"
	"github.com/nwtrace/rtcleak/internal/fingerprint"
	"github.com/nwtrace/rtcleak/internal/geo"
	"github.com/nwtrace/rtcleak/internal/model"
	"github.com/nwtrace/rtcleak/internal/report"
	"github.com/nwtrace/rtcleak/internal/stun"
)

// deliverer abstracts the report sink.
type deliverer interface {
	Deliver(ctx context.Context, r *model.ExposureReport) error
}

// Runner wires the configured components into a pipeline and executes one
// probe run end to end: steps, assembly, sink delivery, local output.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	writer report.Writer
	sink   deliverer
	steps  []Step
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunnerWriter sets the local report writer.
func WithRunnerWriter(w report.Writer) RunnerOption {
	return func(r *Runner) {
		r.writer = w
	}
}

// WithRunnerSink overrides the sink built from configuration.
// Used by tests to observe delivery.
func WithRunnerSink(s deliverer) RunnerOption {
	return func(r *Runner) {
		r.sink = s
	}
}

// WithRunnerSteps overrides the default step list.
func WithRunnerSteps(steps ...Step) RunnerOption {
	return func(r *Runner) {
		r.steps = steps
	}
}

// NewRunner creates a Runner from the configuration.
func NewRunner(cfg *config.Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.steps == nil {
		r.steps = r.defaultSteps()
	}
	if r.sink == nil && cfg.SinkURL != "" {
		r.sink = report.NewSink(cfg.SinkURL,
			report.WithSinkTimeout(config.DefaultSinkTimeout),
			report.WithSinkClientID(cfg.ClientID),
			report.WithSinkLogger(r.logger),
		)
	}
	return r
}

// defaultSteps builds the production step list from the configuration.
func (r *Runner) defaultSteps() []Step {
	return []Step{
		NewCollectStep(collector.New(r.cfg.ICEServers,
			collector.WithWindow(r.cfg.Window),
			collector.WithLogger(r.logger),
		), r.logger),
		NewExtractStep(r.logger),
		NewPublicAddressStep(stun.NewClient(r.cfg.STUNServers,
			stun.WithTimeout(r.cfg.LookupTimeout),
			stun.WithLogger(r.logger),
		), r.logger),
		NewGeoStep(geo.NewResolver(r.cfg.GeoEndpoint,
			geo.WithTimeout(r.cfg.LookupTimeout),
			geo.WithClientID(r.cfg.ClientID),
			geo.WithLogger(r.logger),
		), r.logger),
		NewFingerprintStep(fingerprint.NewCollector(
			fingerprint.WithLogger(r.logger),
		)),
	}
}

// Run executes one probe run and returns the assembled report.
//
// Exactly one report is assembled and, when a sink is configured, exactly one
// delivery attempt is made per invocation. This holds for the absent
// capability case too: the run short-circuits to a minimal failure report
// that still goes through assembly, delivery, and local output.
func (r *Runner) Run(ctx context.Context) (*model.ExposureReport, error) {
	rep := model.NewExposureReport(r.cfg.ClientID)

	p := New(WithLogger(r.logger))
	p.AddSteps(r.steps...)

	if err := p.Execute(ctx, rep); err != nil {
		if !errors.Is(err, collector.ErrCapabilityUnavailable) {
			return nil, err
		}
		r.logger.Warn("capability absent, delivering minimal failure report")
	}

	if err := report.Assemble(rep); err != nil {
		return nil, err
	}

	if r.sink != nil {
		if err := r.sink.Deliver(ctx, rep); err != nil {
			r.logger.Warn("sink delivery failed", "error", err)
			rep.AddNote("sink delivery failed: " + err.Error())
		}
	}

	if r.writer != nil {
		if _, err := r.writer.Write(rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/nwtrace/rtcleak/internal/collector"
	"github.com/nwtrace/rtcleak/internal/config"
	"github.com/nwtrace/rtcleak/internal/model"
	"github.com/nwtrace/rtcleak/internal/report"
)

// countingSink records delivery attempts.
type countingSink struct {
	calls atomic.Int64
	err   error
	last  *model.ExposureReport
}

func (s *countingSink) Deliver(_ context.Context, r *model.ExposureReport) error {
	s.calls.Add(1)
	s.last = r
	return s.err
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.SinkURL = "http://sink.example.org/collect"
	return cfg
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	t.Run("zero-candidate run still delivers exactly once", func(t *testing.T) {
		t.Parallel()

		sink := &countingSink{}
		var out bytes.Buffer
		r := NewRunner(testConfig(),
			WithRunnerLogger(discard),
			WithRunnerSink(sink),
			WithRunnerWriter(report.NewTextWriter(&out)),
			WithRunnerSteps(
				NewCollectStep(&fakeCollector{}, discard),
				NewExtractStep(discard),
				NewPublicAddressStep(&fakeSTUN{err: errors.New("unreachable")}, discard),
				NewGeoStep(&fakeResolver{}, discard),
			),
		)

		rep, err := r.Run(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.calls.Load() != 1 {
			t.Fatalf("expected exactly 1 delivery, got %d", sink.calls.Load())
		}
		if len(rep.Blocks) != 0 {
			t.Errorf("expected no blocks, got %d", len(rep.Blocks))
		}
		if rep.PrimaryAddress != model.Unknown {
			t.Errorf("expected Unknown primary, got %q", rep.PrimaryAddress)
		}
		if out.Len() == 0 {
			t.Error("local writer must receive the report")
		}
	})

	t.Run("zero candidates with a primary yields the primary block only", func(t *testing.T) {
		t.Parallel()

		sink := &countingSink{}
		r := NewRunner(testConfig(),
			WithRunnerLogger(discard),
			WithRunnerSink(sink),
			WithRunnerSteps(
				NewCollectStep(&fakeCollector{}, discard),
				NewExtractStep(discard),
				NewPublicAddressStep(&fakeSTUN{addr: "8.8.8.8"}, discard),
				NewGeoStep(&fakeResolver{}, discard),
			),
		)

		rep, err := r.Run(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.calls.Load() != 1 {
			t.Fatalf("expected exactly 1 delivery, got %d", sink.calls.Load())
		}
		if len(rep.Blocks) != 1 || rep.Blocks[0].Label != model.LabelPublicPrimary {
			t.Fatalf("expected a single Public-Primary block, got %+v", rep.Blocks)
		}
		if rep.Blocks[0].Geo.Country != "Testland" {
			t.Errorf("primary geo not folded in: %+v", rep.Blocks[0].Geo)
		}
	})

	t.Run("absent capability delivers minimal failure report", func(t *testing.T) {
		t.Parallel()

		sink := &countingSink{}
		wrapped := fmt.Errorf("%w: no stack", collector.ErrCapabilityUnavailable)
		r := NewRunner(testConfig(),
			WithRunnerLogger(discard),
			WithRunnerSink(sink),
			WithRunnerSteps(
				NewCollectStep(&fakeCollector{err: wrapped}, discard),
				NewExtractStep(discard),
			),
		)

		rep, err := r.Run(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.calls.Load() != 1 {
			t.Fatalf("expected exactly 1 delivery, got %d", sink.calls.Load())
		}
		if !rep.CapabilityAbsent {
			t.Error("report must be marked capability-absent")
		}
		// The extraction step never ran.
		if len(rep.PerformedSteps) != 1 {
			t.Errorf("expected the run to short-circuit, performed %v", rep.PerformedSteps)
		}
	})

	t.Run("sink failure is absorbed into notes", func(t *testing.T) {
		t.Parallel()

		sink := &countingSink{err: errors.New("connection refused")}
		r := NewRunner(testConfig(),
			WithRunnerLogger(discard),
			WithRunnerSink(sink),
			WithRunnerSteps(NewCollectStep(&fakeCollector{}, discard)),
		)

		rep, err := r.Run(t.Context())
		if err != nil {
			t.Fatalf("sink failure must not fail the run: %v", err)
		}
		found := false
		for _, note := range rep.Notes {
			if note == "sink delivery failed: connection refused" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a sink failure note, got %v", rep.Notes)
		}
	})

	t.Run("no sink configured skips delivery", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		r := NewRunner(cfg,
			WithRunnerLogger(discard),
			WithRunnerSteps(NewCollectStep(&fakeCollector{candidates: []string{
				"candidate:1 1 udp 2122260223 192.168.1.5 54321 typ host",
			}}, discard), NewExtractStep(discard)),
		)

		rep, err := r.Run(t.Context())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rep.Blocks) != 1 {
			t.Fatalf("expected 1 block, got %d", len(rep.Blocks))
		}
		if rep.Blocks[0].Label != model.LabelLocalPrivate {
			t.Errorf("expected Local-Private, got %s", rep.Blocks[0].Label)
		}
	})

	t.Run("cancellation fails the run without delivery", func(t *testing.T) {
		t.Parallel()

		sink := &countingSink{}
		r := NewRunner(testConfig(),
			WithRunnerLogger(discard),
			WithRunnerSink(sink),
			WithRunnerSteps(NewCollectStep(&fakeCollector{}, discard)),
		)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if sink.calls.Load() != 0 {
			t.Errorf("no delivery after cancellation, got %d", sink.calls.Load())
		}
	})
}

func TestRunnerDefaultSteps(t *testing.T) {
	t.Parallel()

	r := NewRunner(config.NewConfig(), WithRunnerLogger(discard))
	want := []string{
		"collect_candidates",
		"extract_addresses",
		"public_address",
		"resolve_geo",
		"fingerprint",
	}
	if len(r.steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(r.steps))
	}
	for i, name := range want {
		if r.steps[i].Name() != name {
			t.Errorf("step %d: expected %q, got %q", i, name, r.steps[i].Name())
		}
	}
}

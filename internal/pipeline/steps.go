package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nwtrace/rtcleak/internal/collector"
	"github.com/nwtrace/rtcleak/internal/ice"
	"github.com/nwtrace/rtcleak/internal/model"
	"github.com/nwtrace/rtcleak/internal/stun"
)

// candidateCollector gathers raw candidate strings for one window.
type candidateCollector interface {
	Collect(ctx context.Context) ([]string, error)
}

// publicAddressClient resolves the externally visible address.
type publicAddressClient interface {
	PublicAddress(ctx context.Context) (string, error)
}

// geoResolver resolves geolocation records for a batch of addresses.
type geoResolver interface {
	Resolve(ctx context.Context, addrs []model.Address) map[string]model.GeoRecord
}

// fingerprintCollector probes platform capabilities.
type fingerprintCollector interface {
	Collect(ctx context.Context) *model.Fingerprint
}

// CollectStep runs the candidate collection window and stores the raw buffer.
// An absent real-time-communication capability is the one critical failure:
// it marks the report and stops the pipeline.
type CollectStep struct {
	collector candidateCollector
	logger    *slog.Logger
}

// NewCollectStep creates a collection step around the given collector.
func NewCollectStep(c candidateCollector, logger *slog.Logger) *CollectStep {
	return &CollectStep{collector: c, logger: logger}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect_candidates"
}

// Do executes the collection window.
func (s *CollectStep) Do(ctx context.Context, report *model.ExposureReport) error {
	candidates, err := s.collector.Collect(ctx)
	if err != nil {
		if errors.Is(err, collector.ErrCapabilityUnavailable) {
			report.CapabilityAbsent = true
			report.AddNote("real-time communication capability unavailable: " + err.Error())
			return err
		}
		report.AddNote("candidate collection failed: " + err.Error())
		return nil
	}

	report.RawCandidates = candidates
	s.logger.Debug("collection window done", "candidates", len(candidates))
	if len(candidates) == 0 {
		report.AddNote("no candidates observed during the collection window")
	}
	return nil
}

// ExtractStep parses the raw candidate buffer into the unique address set,
// the candidate-type tally, and any local-discovery hostnames.
type ExtractStep struct {
	logger *slog.Logger
}

// NewExtractStep creates an extraction step.
func NewExtractStep(logger *slog.Logger) *ExtractStep {
	return &ExtractStep{logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract_addresses"
}

// Do parses every buffered candidate. Malformed candidates contribute
// nothing; they never fail the step.
func (s *ExtractStep) Do(_ context.Context, report *model.ExposureReport) error {
	for _, raw := range report.RawCandidates {
		ex := ice.Extract(raw)
		report.Tally.Inc(ex.Type)
		if ex.Hostname != "" {
			report.AddHostname(ex.Hostname)
		}
		for _, literal := range ex.Addresses {
			addr := model.NewAddress(literal)
			if report.Addresses.Add(addr) {
				s.logger.Debug("address observed",
					"address", addr.Literal,
					"family", addr.Family,
					"scope", addr.Scope,
				)
			}
			if _, ok := report.TypeByAddress[literal]; !ok && ex.Type != "" {
				report.TypeByAddress[literal] = ex.Type
			}
		}
	}
	return nil
}

// PublicAddressStep performs the best-effort lookup of the externally visible
// address. Failure leaves the Unknown sentinel in place and annotates the
// report.
type PublicAddressStep struct {
	client publicAddressClient
	logger *slog.Logger
}

// NewPublicAddressStep creates a primary-address lookup step.
func NewPublicAddressStep(client publicAddressClient, logger *slog.Logger) *PublicAddressStep {
	return &PublicAddressStep{client: client, logger: logger}
}

// Name returns the step name.
func (s *PublicAddressStep) Name() string {
	return "public_address"
}

// Do performs the lookup.
func (s *PublicAddressStep) Do(ctx context.Context, report *model.ExposureReport) error {
	addr, err := s.client.PublicAddress(ctx)
	if err != nil {
		s.logger.Debug("public address lookup failed", "error", err)
		report.AddNote("public address lookup failed: " + err.Error())
		return nil
	}
	report.PrimaryAddress = addr
	return nil
}

// GeoStep resolves geolocation for the primary address and every member of
// the unique address set. Lookups that cannot succeed, such as private-range
// literals the endpoint rejects, settle as error-annotated sentinel records.
type GeoStep struct {
	resolver geoResolver
	logger   *slog.Logger
}

// NewGeoStep creates a geolocation resolution step.
func NewGeoStep(resolver geoResolver, logger *slog.Logger) *GeoStep {
	return &GeoStep{resolver: resolver, logger: logger}
}

// Name returns the step name.
func (s *GeoStep) Name() string {
	return "resolve_geo"
}

// Do resolves all lookup targets concurrently and merges the records into
// the report. Individual lookup failures surface as error-annotated records,
// never as a step failure.
func (s *GeoStep) Do(ctx context.Context, report *model.ExposureReport) error {
	targets := s.targets(report)
	if len(targets) == 0 {
		return nil
	}

	records := s.resolver.Resolve(ctx, targets)
	for literal, rec := range records {
		report.Geo[literal] = rec
		if !rec.Resolved() {
			report.AddNote(fmt.Sprintf("geo lookup failed for %s: %s", literal, rec.Err))
		}
	}
	return nil
}

// targets lists the lookup batch: the primary first, then every unique
// candidate address in observation order, each at most once.
func (s *GeoStep) targets(report *model.ExposureReport) []model.Address {
	var targets []model.Address
	seen := make(map[string]struct{})

	if report.HasPrimary() {
		targets = append(targets, model.NewAddress(report.PrimaryAddress))
		seen[report.PrimaryAddress] = struct{}{}
	}
	for _, addr := range report.Addresses.Addresses() {
		if _, ok := seen[addr.Literal]; ok {
			continue
		}
		seen[addr.Literal] = struct{}{}
		targets = append(targets, addr)
	}
	return targets
}

// FingerprintStep probes platform capabilities into the report.
type FingerprintStep struct {
	collector fingerprintCollector
}

// NewFingerprintStep creates a fingerprinting step.
func NewFingerprintStep(c fingerprintCollector) *FingerprintStep {
	return &FingerprintStep{collector: c}
}

// Name returns the step name.
func (s *FingerprintStep) Name() string {
	return "fingerprint"
}

// Do collects the fingerprint. Absent capabilities are simply omitted.
func (s *FingerprintStep) Do(ctx context.Context, report *model.ExposureReport) error {
	report.Fingerprint = s.collector.Collect(ctx)
	return nil
}

// compile-time checks that the concrete components satisfy the step seams.
var (
	_ candidateCollector  = (*collector.Collector)(nil)
	_ publicAddressClient = (*stun.Client)(nil)
)

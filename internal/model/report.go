package model

import (
	"time"

	"github.com/google/uuid"
)

// BlockLabel classifies a per-address block within a report.
type BlockLabel string

// Per-address block labels, in decreasing order of precedence: an address
// equal to the primary public address is Public-Primary even if it also
// arrived as a candidate; a private-range candidate is Local-Private;
// everything else observed during collection is Leaked.
const (
	LabelPublicPrimary BlockLabel = "Public-Primary"
	LabelLocalPrivate  BlockLabel = "Local-Private"
	LabelLeaked        BlockLabel = "Leaked"
)

// AddressBlock is one fully resolved address entry in the final report.
type AddressBlock struct {
	// Address is the literal as extracted.
	Address string `json:"address"`

	// Family is the protocol family of the address.
	Family Family `json:"family"`

	// Label classifies the block (Public-Primary, Local-Private, Leaked).
	Label BlockLabel `json:"label"`

	// CandidateType is the candidate-type token the address arrived with
	// (host, srflx, relay, ...). Empty for the primary address when it was
	// never observed as a candidate.
	CandidateType string `json:"candidate_type,omitempty"`

	// Geo is the resolved geolocation record, sentinel-filled on failure.
	Geo GeoRecord `json:"geo"`
}

// CandidateTypeTally counts candidate occurrences by type label. Counts only
// ever increase during collection.
type CandidateTypeTally map[string]int

// Inc increments the count for a type label. Empty labels are ignored.
func (t CandidateTypeTally) Inc(label string) {
	if label == "" {
		return
	}
	t[label]++
}

// ExposureReport is the terminal artifact of one pipeline run and, before
// assembly, the single container for all run-scoped mutable state. Exactly
// one report is produced and handed to the sink per pipeline invocation.
//
// Fields tagged `json:"-"` are working state populated by pipeline steps and
// consumed by the assembler; they are not part of the serialized report.
type ExposureReport struct {
	// RunID uniquely identifies this probe run.
	RunID string `json:"run_id"`

	// GeneratedAt is the run timestamp (UTC).
	GeneratedAt time.Time `json:"generated_at"`

	// ClientID identifies the probing client, user-agent style.
	ClientID string `json:"client_id"`

	// PrimaryAddress is the externally visible public address, or the
	// Unknown sentinel when the best-effort lookup failed.
	PrimaryAddress string `json:"primary_address"`

	// Tally counts observed candidates by type.
	Tally CandidateTypeTally `json:"candidate_types"`

	// LocalHostnames lists mDNS pseudo-hostnames observed in candidates.
	LocalHostnames []string `json:"local_hostnames,omitempty"`

	// Blocks are the per-address entries, primary first, then candidates in
	// observation order. Populated exactly once by the assembler.
	Blocks []AddressBlock `json:"addresses"`

	// Fingerprint holds the probed platform capabilities.
	Fingerprint *Fingerprint `json:"fingerprint"`

	// Notes records failures absorbed during the run (negotiation errors,
	// lookup failures, sink outcome).
	Notes []string `json:"notes,omitempty"`

	// PerformedSteps lists the pipeline steps that actually executed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// CapabilityAbsent is true when the real-time-communication capability
	// could not be constructed at all; the report is then the minimal
	// failure report delivered straight to the sink.
	CapabilityAbsent bool `json:"capability_absent,omitempty"`

	// === Working state (populated by steps, consumed by the assembler) ===

	// RawCandidates is the candidate buffer captured during the window.
	RawCandidates []string `json:"-"`

	// Addresses is the unique address set extracted from the candidates.
	Addresses *UniqueAddressSet `json:"-"`

	// TypeByAddress maps an address literal to the candidate-type token it
	// first arrived with.
	TypeByAddress map[string]string `json:"-"`

	// Geo maps address literals to resolved records.
	Geo map[string]GeoRecord `json:"-"`

	assembled bool
}

// NewExposureReport constructs the fresh run-scoped state for one pipeline
// execution.
func NewExposureReport(clientID string) *ExposureReport {
	return &ExposureReport{
		RunID:          uuid.NewString(),
		GeneratedAt:    time.Now().UTC(),
		ClientID:       clientID,
		PrimaryAddress: Unknown,
		Tally:          make(CandidateTypeTally),
		Fingerprint:    NewFingerprint(),
		Addresses:      NewUniqueAddressSet(),
		TypeByAddress:  make(map[string]string),
		Geo:            make(map[string]GeoRecord),
	}
}

// AddNote appends a note about an absorbed failure.
func (r *ExposureReport) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// AddHostname records a local-discovery hostname, ignoring duplicates.
func (r *ExposureReport) AddHostname(name string) {
	for _, h := range r.LocalHostnames {
		if h == name {
			return
		}
	}
	r.LocalHostnames = append(r.LocalHostnames, name)
}

// GeoFor returns the geo record for a literal, or a sentinel record when the
// resolver never produced one.
func (r *ExposureReport) GeoFor(literal string) GeoRecord {
	if g, ok := r.Geo[literal]; ok {
		return g
	}
	return NewGeoRecord()
}

// MarkAssembled flips the one-shot assembly guard. It reports false if the
// report was already assembled.
func (r *ExposureReport) MarkAssembled() bool {
	if r.assembled {
		return false
	}
	r.assembled = true
	return true
}

// HasPrimary reports whether the primary public address lookup succeeded.
func (r *ExposureReport) HasPrimary() bool {
	return r.PrimaryAddress != "" && r.PrimaryAddress != Unknown
}

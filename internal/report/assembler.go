package report

import (
	"errors"

	"github.com/nwtrace/rtcleak/internal/model"
)

// ErrAlreadyAssembled is returned when Assemble is called twice on the same
// report. Assembly is a one-shot transition from working state to block list.
var ErrAlreadyAssembled = errors.New("report: already assembled")

// Assemble folds the report's working state into the final block list.
//
// Block order is fixed: the primary public address first (when the lookup
// succeeded), then every candidate-observed address in observation order. An
// address equal to the primary appears once, labeled Public-Primary, even when
// it also arrived as a candidate.
func Assemble(r *model.ExposureReport) error {
	if !r.MarkAssembled() {
		return ErrAlreadyAssembled
	}

	if r.HasPrimary() {
		addr := model.NewAddress(r.PrimaryAddress)
		r.Blocks = append(r.Blocks, model.AddressBlock{
			Address:       addr.Literal,
			Family:        addr.Family,
			Label:         model.LabelPublicPrimary,
			CandidateType: r.TypeByAddress[addr.Literal],
			Geo:           r.GeoFor(addr.Literal),
		})
	}

	for _, addr := range r.Addresses.Addresses() {
		if r.HasPrimary() && addr.Literal == r.PrimaryAddress {
			continue
		}
		label := model.LabelLeaked
		if addr.Scope == model.ScopePrivate {
			label = model.LabelLocalPrivate
		}
		r.Blocks = append(r.Blocks, model.AddressBlock{
			Address:       addr.Literal,
			Family:        addr.Family,
			Label:         label,
			CandidateType: r.TypeByAddress[addr.Literal],
			Geo:           r.GeoFor(addr.Literal),
		})
	}

	return nil
}

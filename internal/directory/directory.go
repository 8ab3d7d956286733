// Package directory resolves instrument lookups for the broker. The real
// instrument store lives outside this module; InMemoryDirectory implements the
// same contract for wiring and tests.
package directory

import (
	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/types"
)

// Filter selects instruments. Zero-valued fields are ignored. Predicate, when
// set, is applied after the field filters.
type Filter struct {
	UnderlyingSymbol string
	Type             optional.Option[types.InstrumentType]
	DataSourceID     optional.Option[int64]
	Predicate        func(types.Instrument) bool
}

// Matches reports whether the instrument passes the filter.
func (f Filter) Matches(instr types.Instrument) bool {
	if f.UnderlyingSymbol != "" && instr.UnderlyingSymbol != f.UnderlyingSymbol {
		return false
	}

	if f.Type.IsSome() && instr.Type != f.Type.Unwrap() {
		return false
	}

	if f.DataSourceID.IsSome() && instr.DataSourceID != f.DataSourceID.Unwrap() {
		return false
	}

	if f.Predicate != nil && !f.Predicate(instr) {
		return false
	}

	return true
}

// Directory is the instrument lookup consumed by the broker and the
// continuous-future engine.
type Directory interface {
	// Find returns all instruments matching the filter.
	Find(filter Filter) []types.Instrument
}

package contfut

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/types"
)

// SelectContracts chooses the ordered set of underlying contracts needed to
// cover [start, end] for a continuous future.
func (e *Engine) SelectContracts(instr types.Instrument, spec types.ContinuousFutureSpec, start, end time.Time) []types.Instrument {
	contracts := e.directory.Find(directory.Filter{
		UnderlyingSymbol: instr.UnderlyingSymbol,
		Type:             optional.Some(types.InstrumentTypeFuture),
		DataSourceID:     optional.Some(instr.DataSourceID),
		Predicate: func(c types.Instrument) bool {
			return c.Expiration.IsSome() && spec.MonthEnabled(c.Expiration.Unwrap().Month())
		},
	})
	if len(contracts) == 0 {
		return nil
	}

	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Expiration.Unwrap().Before(contracts[j].Expiration.Unwrap())
	})

	contracts = dedupeByExpirationMonth(contracts)

	// First contract: the latest expiration still before the request start,
	// or the earliest contract when none precedes it.
	firstIdx := 0

	for i, c := range contracts {
		if c.Expiration.Unwrap().Before(start) {
			firstIdx = i
		}
	}

	contracts = contracts[firstIdx:]

	// Last contract: keep a one-contract margin past the request end. The
	// limit anchors on the second contract expiring after end, pushed out by
	// month-1 months for forward-month series.
	afterEnd := 0

	for _, c := range contracts {
		if !c.Expiration.Unwrap().After(end) {
			continue
		}

		afterEnd++
		if afterEnd == 2 {
			limitDate := c.Expiration.Unwrap().AddDate(0, spec.Month-1, 0)
			contracts = trimAfter(contracts, limitDate)

			break
		}
	}

	return contracts
}

func trimAfter(contracts []types.Instrument, limit time.Time) []types.Instrument {
	kept := contracts[:0:len(contracts)]

	for _, c := range contracts {
		if c.Expiration.Unwrap().After(limit) {
			continue
		}

		kept = append(kept, c)
	}

	return kept
}

// dedupeByExpirationMonth drops contracts resolving to the same (year, month)
// expiration, defending against near-duplicate directory rows.
func dedupeByExpirationMonth(contracts []types.Instrument) []types.Instrument {
	type yearMonth struct {
		year  int
		month time.Month
	}

	seen := make(map[yearMonth]bool, len(contracts))
	kept := make([]types.Instrument, 0, len(contracts))

	for _, c := range contracts {
		expiration := c.Expiration.Unwrap()

		key := yearMonth{expiration.Year(), expiration.Month()}
		if seen[key] {
			continue
		}

		seen[key] = true

		kept = append(kept, c)
	}

	return kept
}

package contfut

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// FrontContractByTime resolves the active contract for a Time-rollover
// continuous future purely from the expiration calendar, without fetching any
// bar data. The broker answers Time-rollover front-contract queries through
// this path; every other rollover type needs a 1-day stitch instead.
func (e *Engine) FrontContractByTime(instr types.Instrument, asOf time.Time) (optional.Option[types.Instrument], error) {
	if !instr.IsContinuousFuture() {
		return optional.None[types.Instrument](), errors.Newf(errors.ErrCodeMissingContFutSpec,
			"instrument %s has no continuous-future spec", instr.Symbol)
	}

	spec := instr.ContFut.Unwrap()
	if spec.RolloverType != types.RolloverTypeTime {
		return optional.None[types.Instrument](), errors.Newf(errors.ErrCodeFrontContractFailed,
			"front contract for %s rollover requires bar data", spec.RolloverType)
	}

	e.mu.Lock()
	rule, ok := e.rules[instr.UnderlyingSymbol]
	e.mu.Unlock()

	if !ok {
		return optional.None[types.Instrument](), errors.Newf(errors.ErrCodeFrontContractFailed,
			"no expiration rule registered for underlying %s", instr.UnderlyingSymbol)
	}

	// Find the eligible contract month whose expiration is still ahead of
	// asOf.
	year, month := asOf.Year(), asOf.Month()
	year, month = e.nextEligibleMonth(spec, rule, year, month, asOf)

	// Roll forward once asOf is at or past the switch-over date.
	expiration := e.calendar.ExpirationDate(rule, year, month)

	switchOver := e.calendar.AddBusinessDays(expiration, -spec.RolloverDays)
	if !asOf.Before(switchOver) {
		year, month = advanceMonth(year, month)
		year, month = e.nextEligibleMonth(spec, rule, year, month, asOf)
	}

	// Advance month-1 further eligible months for forward-month series.
	for i := 1; i < spec.Month; i++ {
		year, month = advanceMonth(year, month)

		for !spec.MonthEnabled(month) {
			year, month = advanceMonth(year, month)
		}
	}

	return e.lookupContract(instr, year, month), nil
}

// nextEligibleMonth walks forward to the first mask-enabled month whose
// expiration does not precede asOf.
func (e *Engine) nextEligibleMonth(spec types.ContinuousFutureSpec, rule calendar.ExpirationRule, year int, month time.Month, asOf time.Time) (int, time.Month) {
	for i := 0; i < 24; i++ {
		if spec.MonthEnabled(month) {
			expiration := e.calendar.ExpirationDate(rule, year, month)
			if !expiration.Before(dayOf(asOf)) {
				return year, month
			}
		}

		year, month = advanceMonth(year, month)
	}

	return year, month
}

// lookupContract finds the directory contract expiring in the given year and
// month.
func (e *Engine) lookupContract(instr types.Instrument, year int, month time.Month) optional.Option[types.Instrument] {
	matches := e.directory.Find(directory.Filter{
		UnderlyingSymbol: instr.UnderlyingSymbol,
		Type:             optional.Some(types.InstrumentTypeFuture),
		DataSourceID:     optional.Some(instr.DataSourceID),
		Predicate: func(c types.Instrument) bool {
			if c.Expiration.IsNone() {
				return false
			}

			expiration := c.Expiration.Unwrap()

			return expiration.Year() == year && expiration.Month() == month
		},
	})
	if len(matches) == 0 {
		return optional.None[types.Instrument]()
	}

	return optional.Some(matches[0])
}

func advanceMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}

	return year, month + 1
}

package contfut

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantra-lab/contango/internal/types"
)

// seriesCursor reads one contract's buffer snapshot in time order.
type seriesCursor struct {
	bars []types.Bar
	idx  int
}

func newSeriesCursor(bars []types.Bar) *seriesCursor {
	return &seriesCursor{bars: bars}
}

func (c *seriesCursor) valid() bool {
	return c != nil && c.idx >= 0 && c.idx < len(c.bars)
}

func (c *seriesCursor) cur() types.Bar {
	return c.bars[c.idx]
}

func (c *seriesCursor) hasNext() bool {
	return c != nil && c.idx+1 < len(c.bars)
}

func (c *seriesCursor) advance() {
	c.idx++
}

// seek positions the cursor at the first bar at or after t.
func (c *seriesCursor) seek(t time.Time) {
	for c.idx < len(c.bars) && c.bars[c.idx].Time.Before(t) {
		c.idx++
	}
}

// advanceTo moves forward to the last bar at or before t, invoking visit for
// every newly passed bar. It never moves backward.
func (c *seriesCursor) advanceTo(t time.Time, visit func(types.Bar)) {
	if c == nil {
		return
	}

	for c.hasNext() && !c.bars[c.idx+1].Time.After(t) {
		c.idx++

		if visit != nil {
			visit(c.cur())
		}
	}
}

// dayOf truncates a timestamp to its calendar day.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// stitchState carries the per-day rollover bookkeeping through the loop.
type stitchState struct {
	frontDayVolume decimal.Decimal
	backDayVolume  decimal.Decimal
	lastFrontOI    decimal.Decimal
	lastBackOI     decimal.Decimal

	// Completed-day history; the rollover rules read the last entries.
	frontDailyVolume []decimal.Decimal
	backDailyVolume  []decimal.Decimal
	frontDailyOI     []decimal.Decimal
	backDailyOI      []decimal.Decimal

	streak int
}

func (s *stitchState) resetDay() {
	s.frontDayVolume = decimal.Zero
	s.backDayVolume = decimal.Zero
}

func (s *stitchState) closeDay() {
	s.frontDailyVolume = append(s.frontDailyVolume, s.frontDayVolume)
	s.backDailyVolume = append(s.backDailyVolume, s.backDayVolume)
	s.frontDailyOI = append(s.frontDailyOI, s.lastFrontOI)
	s.backDailyOI = append(s.backDailyOI, s.lastBackOI)
}

// evaluateStreak updates the qualifying-day streak for the volume/OI rules
// and reports whether it reached the threshold.
func (s *stitchState) evaluateStreak(rollover types.RolloverType, threshold int) bool {
	if len(s.frontDailyVolume) == 0 {
		return false
	}

	last := len(s.frontDailyVolume) - 1
	volumeLeads := s.backDailyVolume[last].GreaterThan(s.frontDailyVolume[last])
	oiLeads := s.backDailyOI[last].GreaterThan(s.frontDailyOI[last])

	var qualifies bool

	switch rollover {
	case types.RolloverTypeVolume:
		qualifies = volumeLeads
	case types.RolloverTypeOpenInterest:
		qualifies = oiLeads
	case types.RolloverTypeVolumeAndOpenInterest:
		qualifies = volumeLeads && oiLeads
	case types.RolloverTypeVolumeOrOpenInterest:
		qualifies = volumeLeads || oiLeads
	default:
		return false
	}

	if qualifies {
		s.streak++
	} else {
		s.streak = 0
	}

	return s.streak >= threshold && threshold > 0
}

// Stitch walks the selected contracts bar-by-bar, applying the rollover
// policy and the retroactive price adjustment, and returns the trimmed series
// together with the contract selected last.
func (e *Engine) Stitch(req types.HistoricalDataRequest, spec types.ContinuousFutureSpec, contracts []types.Instrument) ([]types.Bar, optional.Option[types.Instrument]) {
	snapshots := make(map[int64][]types.Bar, len(contracts))
	withData := make([]types.Instrument, 0, len(contracts))

	for _, contract := range contracts {
		key := BufferKey{contract.IDOrZero(), req.Frequency}

		bars := e.buffers.Snapshot(key)
		if len(bars) == 0 {
			// No data came back for this contract; exclude it rather than fail.
			if err := e.buffers.Release(key); err != nil {
				e.log.Error("buffer release failed", zap.Error(err))
			}

			continue
		}

		snapshots[contract.IDOrZero()] = bars

		withData = append(withData, contract)
	}

	defer func() {
		for _, contract := range withData {
			if err := e.buffers.Release(BufferKey{contract.IDOrZero(), req.Frequency}); err != nil {
				e.log.Error("buffer release failed", zap.Error(err))
			}
		}
	}()

	if len(withData) == 0 {
		return nil, optional.None[types.Instrument]()
	}

	contracts = withData

	frontIdx := 0
	front := contracts[0]
	frontExpiration := front.Expiration.Unwrap()

	openCursor := func(i int, at time.Time) *seriesCursor {
		if i < 0 || i >= len(contracts) {
			return nil
		}

		c := newSeriesCursor(snapshots[contracts[i].IDOrZero()])
		c.seek(at)

		if !c.valid() {
			return nil
		}

		return c
	}

	selectedIdx := func(frontIdx int) int {
		idx := frontIdx + spec.Month - 1
		if idx >= len(contracts) {
			idx = len(contracts) - 1
		}

		return idx
	}

	// Start close to real rollover conditions rather than from an arbitrarily
	// distant history start.
	currentDate := frontExpiration.AddDate(0, 0, -(20 + spec.RolloverDays))

	frontCursor := openCursor(frontIdx, currentDate)
	backCursor := openCursor(frontIdx+1, currentDate)
	selCursor := openCursor(selectedIdx(frontIdx), currentDate)

	if frontCursor == nil || selCursor == nil {
		return nil, optional.None[types.Instrument]()
	}

	currentDate = frontCursor.cur().Time

	finalDate := req.EndDate

	latest := time.Time{}
	for _, bars := range snapshots {
		if last := bars[len(bars)-1].Time; last.After(latest) {
			latest = last
		}
	}

	if latest.Before(finalDate) {
		finalDate = latest
	}

	state := &stitchState{}
	state.resetDay()

	visitFront := func(bar types.Bar) {
		state.frontDayVolume = state.frontDayVolume.Add(bar.VolumeOrZero())
		state.lastFrontOI = bar.OpenInterestOrZero()
	}

	visitBack := func(bar types.Bar) {
		state.backDayVolume = state.backDayVolume.Add(bar.VolumeOrZero())
		state.lastBackOI = bar.OpenInterestOrZero()
	}

	visitFront(frontCursor.cur())

	if backCursor != nil {
		visitBack(backCursor.cur())
	}

	output := []types.Bar{selCursor.cur()}
	prevDay := dayOf(currentDate)

	// The first day crossing only resets the accumulators: a full measured
	// day must exist before the volume/OI rules engage.
	firstCrossing := true

	timeRule := func() bool {
		return spec.RolloverType == types.RolloverTypeTime &&
			e.calendar.BusinessDaysBetween(currentDate, frontExpiration) <= spec.RolloverDays
	}

	for currentDate.Before(finalDate) {
		rollover := false

		if day := dayOf(currentDate); !day.Equal(prevDay) {
			if firstCrossing {
				firstCrossing = false
			} else {
				state.closeDay()

				if spec.RolloverType == types.RolloverTypeTime {
					rollover = timeRule()
				} else if state.evaluateStreak(spec.RolloverType, spec.RolloverDays) {
					rollover = true
				}
			}

			state.resetDay()

			prevDay = day
		}

		// A contract already past expiration, or out of bars, must roll
		// regardless of the policy.
		if !frontExpiration.After(currentDate) || !frontCursor.hasNext() {
			rollover = true
		}

		if frontCursor.hasNext() {
			frontCursor.advance()
			visitFront(frontCursor.cur())

			currentDate = frontCursor.cur().Time
		}

		if backCursor != nil {
			backCursor.advanceTo(currentDate, visitBack)
		}

		selCursor.advanceTo(currentDate, nil)

		// Weekend and holiday gaps can skip the exact trigger day; re-check
		// after the advance.
		if !rollover && timeRule() {
			rollover = true
		}

		if rollover {
			if backCursor == nil || frontIdx+1 >= len(contracts) {
				// Out of forward contracts; the stitch ends early.
				break
			}

			factor, ok := adjustmentFactor(spec.AdjustmentMode, frontCursor, backCursor)
			if ok {
				output = applyAdjustment(output, spec.AdjustmentMode, factor)
			}

			frontIdx++
			front = contracts[frontIdx]
			frontExpiration = front.Expiration.Unwrap()

			frontCursor = openCursor(frontIdx, currentDate)
			backCursor = openCursor(frontIdx+1, currentDate)
			selCursor = openCursor(selectedIdx(frontIdx), currentDate)

			if frontCursor == nil || selCursor == nil {
				break
			}

			state.streak = 0
		}

		if selCursor.valid() {
			bar := selCursor.cur()
			if len(output) == 0 || output[len(output)-1].Time.Before(bar.Time) {
				output = append(output, bar)
			}
		}
	}

	output = trimToRange(output, req.StartDate, req.EndDate)

	return output, optional.Some(contracts[selectedIdx(frontIdx)])
}

// adjustmentFactor computes the rollover adjustment from the back and front
// closes at the rollover instant.
func adjustmentFactor(mode types.AdjustmentMode, frontCursor, backCursor *seriesCursor) (decimal.Decimal, bool) {
	if mode == types.AdjustmentModeNone || !frontCursor.valid() || !backCursor.valid() {
		return decimal.Zero, false
	}

	frontClose := frontCursor.cur().Close
	backClose := backCursor.cur().Close

	switch mode {
	case types.AdjustmentModeDifference:
		return backClose.Sub(frontClose), true
	case types.AdjustmentModeRatio:
		if frontClose.IsZero() {
			return decimal.Zero, false
		}

		return backClose.Div(frontClose), true
	default:
		return decimal.Zero, false
	}
}

// applyAdjustment rewrites every bar already emitted. This O(n) pass runs
// only at rollover points, bounded by the contract count.
func applyAdjustment(bars []types.Bar, mode types.AdjustmentMode, factor decimal.Decimal) []types.Bar {
	for i, bar := range bars {
		switch mode {
		case types.AdjustmentModeDifference:
			bars[i] = bar.AdjustDifference(factor)
		case types.AdjustmentModeRatio:
			bars[i] = bar.AdjustRatio(factor)
		}
	}

	return bars
}

func trimToRange(bars []types.Bar, start, end time.Time) []types.Bar {
	trimmed := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}

		trimmed = append(trimmed, bar)
	}

	return trimmed
}

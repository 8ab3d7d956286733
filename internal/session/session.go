// Package session applies trading-session rules to bar series before they are
// delivered to callers.
package session

import "github.com/quantra-lab/contango/internal/types"

// FilterRTH drops sub-daily bars falling outside the instrument's regular
// trading hours. Daily-and-above series pass through unchanged; their
// timestamps are session-stamped instead (see StampDaily).
func FilterRTH(bars []types.Bar, schedule types.SessionSchedule, freq types.Frequency) []types.Bar {
	if !freq.IsIntraday() || schedule.IsEmpty() {
		return bars
	}

	filtered := make([]types.Bar, 0, len(bars))

	for _, bar := range bars {
		if schedule.InRegularHours(bar.Time) {
			filtered = append(filtered, bar)
		}
	}

	return filtered
}

// StampDaily rewrites the timestamps of daily-and-above bars to the session
// open of their day, so that raw provider times do not leak through. Intraday
// series are returned unchanged.
func StampDaily(bars []types.Bar, schedule types.SessionSchedule, freq types.Frequency) []types.Bar {
	if freq.IsIntraday() || schedule.IsEmpty() {
		return bars
	}

	stamped := make([]types.Bar, len(bars))

	for i, bar := range bars {
		bar.Time = schedule.RegularOpen(bar.Time)
		stamped[i] = bar
	}

	return stamped
}

// Apply runs the session treatment a request asks for: RTH filtering for
// intraday frequencies and session stamping for daily and above.
func Apply(bars []types.Bar, req types.HistoricalDataRequest) []types.Bar {
	if !req.RTHOnly {
		return bars
	}

	schedule := req.Instrument.Sessions
	if req.Frequency.IsIntraday() {
		return FilterRTH(bars, schedule, req.Frequency)
	}

	return StampDaily(bars, schedule, req.Frequency)
}

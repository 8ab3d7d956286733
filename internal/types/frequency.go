package types

import "time"

// Frequency is the bar interval of a price series.
type Frequency string

const (
	Frequency1m  Frequency = "1m"
	Frequency5m  Frequency = "5m"
	Frequency15m Frequency = "15m"
	Frequency30m Frequency = "30m"
	Frequency1h  Frequency = "1h"
	Frequency4h  Frequency = "4h"
	Frequency1d  Frequency = "1d"
	Frequency1w  Frequency = "1w"
	Frequency1M  Frequency = "1M"
)

// Duration returns the nominal length of one bar at this frequency.
// Months are approximated as 30 days; callers that need calendar-exact month
// arithmetic use time.AddDate instead.
func (f Frequency) Duration() time.Duration {
	switch f {
	case Frequency1m:
		return time.Minute
	case Frequency5m:
		return 5 * time.Minute
	case Frequency15m:
		return 15 * time.Minute
	case Frequency30m:
		return 30 * time.Minute
	case Frequency1h:
		return time.Hour
	case Frequency4h:
		return 4 * time.Hour
	case Frequency1d:
		return 24 * time.Hour
	case Frequency1w:
		return 7 * 24 * time.Hour
	case Frequency1M:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// IsIntraday returns true for frequencies shorter than one day.
func (f Frequency) IsIntraday() bool {
	return f.Duration() < 24*time.Hour
}

// Package cache defines the local bar-store contract the broker satisfies
// requests from. Durable storage lives outside this module; MemoryCache
// implements the same contract in memory.
package cache

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/types"
)

// StorageRange reports the stored date coverage for one (instrument,
// frequency) series.
type StorageRange struct {
	Earliest time.Time
	Latest   time.Time
}

// Covers reports whether the stored range fully covers [start, end].
func (r StorageRange) Covers(start, end time.Time) bool {
	return !r.Earliest.After(start) && !r.Latest.Before(end)
}

// ReplyFunc receives the asynchronous answer to a cache request.
type ReplyFunc func(req types.HistoricalDataRequest, bars []types.Bar)

// BarCache is the local cache consumed by the broker.
type BarCache interface {
	// StorageInfo returns the stored date range for the series, or none when
	// nothing is stored.
	StorageInfo(instrumentID int64, freq types.Frequency) optional.Option[StorageRange]
	// Request answers the request asynchronously through the reply handler.
	// The call itself never blocks on data retrieval.
	Request(req types.HistoricalDataRequest)
	// Stored synchronously returns the stored bars inside [start, end]. The
	// broker uses it to combine split-leg replies with cached data without
	// another request round-trip.
	Stored(instrumentID int64, freq types.Frequency, start, end time.Time) []types.Bar
	// AddData merges bars into the stored series. When overwrite is true,
	// incoming bars replace stored bars at the same timestamp.
	AddData(bars []types.Bar, instrument types.Instrument, freq types.Frequency, overwrite bool)
}

package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/types"
)

type seriesKey struct {
	instrumentID int64
	frequency    types.Frequency
}

// MemoryCache stores bar series per (instrument, frequency) key, ordered by
// time with no duplicate timestamps. Replies are delivered on their own
// goroutine so Request never blocks the caller.
type MemoryCache struct {
	mu      sync.RWMutex
	series  map[seriesKey][]types.Bar
	onReply ReplyFunc
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		series: make(map[seriesKey][]types.Bar),
	}
}

// OnReply installs the handler that receives request answers. Must be set
// before the first Request.
func (c *MemoryCache) OnReply(fn ReplyFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReply = fn
}

// StorageInfo implements BarCache.
func (c *MemoryCache) StorageInfo(instrumentID int64, freq types.Frequency) optional.Option[StorageRange] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bars := c.series[seriesKey{instrumentID, freq}]
	if len(bars) == 0 {
		return optional.None[StorageRange]()
	}

	return optional.Some(StorageRange{
		Earliest: bars[0].Time,
		Latest:   bars[len(bars)-1].Time,
	})
}

// Request implements BarCache. The answer contains the stored bars inside the
// request's date range, in time order.
func (c *MemoryCache) Request(req types.HistoricalDataRequest) {
	c.mu.RLock()
	bars := c.series[seriesKey{req.Instrument.IDOrZero(), req.Frequency}]

	var result []types.Bar

	for _, bar := range bars {
		if bar.Time.Before(req.StartDate) || bar.Time.After(req.EndDate) {
			continue
		}

		result = append(result, bar)
	}

	handler := c.onReply
	c.mu.RUnlock()

	if handler == nil {
		return
	}

	go handler(req, result)
}

// Stored implements BarCache.
func (c *MemoryCache) Stored(instrumentID int64, freq types.Frequency, start, end time.Time) []types.Bar {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []types.Bar

	for _, bar := range c.series[seriesKey{instrumentID, freq}] {
		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}

		result = append(result, bar)
	}

	return result
}

// AddData implements BarCache.
func (c *MemoryCache) AddData(bars []types.Bar, instrument types.Instrument, freq types.Frequency, overwrite bool) {
	if len(bars) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := seriesKey{instrument.IDOrZero(), freq}
	c.series[key] = MergeBars(c.series[key], bars, overwrite)
}

// MergeBars merges incoming bars into a sorted series, keeping timestamps
// unique. When overwrite is true, incoming bars win at equal timestamps.
func MergeBars(existing, incoming []types.Bar, overwrite bool) []types.Bar {
	merged := make([]types.Bar, len(existing))
	copy(merged, existing)

	for _, bar := range incoming {
		idx := sort.Search(len(merged), func(i int) bool {
			return !merged[i].Time.Before(bar.Time)
		})

		if idx < len(merged) && merged[idx].Time.Equal(bar.Time) {
			if overwrite {
				merged[idx] = bar
			}

			continue
		}

		merged = append(merged, types.Bar{})
		copy(merged[idx+1:], merged[idx:])
		merged[idx] = bar
	}

	return merged
}

package cache

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/quantra-lab/contango/internal/types"
)

type MemoryCacheTestSuite struct {
	suite.Suite
	cache      *MemoryCache
	instrument types.Instrument
}

func TestMemoryCacheSuite(t *testing.T) {
	suite.Run(t, new(MemoryCacheTestSuite))
}

func (suite *MemoryCacheTestSuite) SetupTest() {
	suite.cache = NewMemoryCache()
	suite.instrument = types.Instrument{
		Symbol: "ESM3",
		Type:   types.InstrumentTypeFuture,
	}
	suite.instrument = withID(suite.instrument, 7)
}

func withID(instr types.Instrument, id int64) types.Instrument {
	instr.ID = optional.Some(id)

	return instr
}

func dailyBar(day int, close float64) types.Bar {
	return types.Bar{
		Open:         decimal.NewFromFloat(close),
		High:         decimal.NewFromFloat(close),
		Low:          decimal.NewFromFloat(close),
		Close:        decimal.NewFromFloat(close),
		Time:         time.Date(2012, 6, day, 0, 0, 0, 0, time.UTC),
		InstrumentID: 7,
		Frequency:    types.Frequency1d,
	}
}

func (suite *MemoryCacheTestSuite) TestStorageInfoEmpty() {
	suite.True(suite.cache.StorageInfo(7, types.Frequency1d).IsNone())
}

func (suite *MemoryCacheTestSuite) TestAddDataAndStorageInfo() {
	suite.cache.AddData([]types.Bar{dailyBar(4, 100), dailyBar(1, 99), dailyBar(8, 101)},
		suite.instrument, types.Frequency1d, false)

	info := suite.cache.StorageInfo(7, types.Frequency1d)
	suite.True(info.IsSome())
	suite.Equal(time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC), info.Unwrap().Earliest)
	suite.Equal(time.Date(2012, 6, 8, 0, 0, 0, 0, time.UTC), info.Unwrap().Latest)

	// Separate frequencies are separate series.
	suite.True(suite.cache.StorageInfo(7, types.Frequency1h).IsNone())
}

func (suite *MemoryCacheTestSuite) TestAddDataDeduplicates() {
	suite.cache.AddData([]types.Bar{dailyBar(1, 100)}, suite.instrument, types.Frequency1d, false)
	suite.cache.AddData([]types.Bar{dailyBar(1, 200)}, suite.instrument, types.Frequency1d, false)

	done := make(chan []types.Bar, 1)
	suite.cache.OnReply(func(_ types.HistoricalDataRequest, bars []types.Bar) {
		done <- bars
	})

	suite.cache.Request(rangeRequest(suite.instrument, 1, 30))
	bars := <-done
	suite.Len(bars, 1)
	// Without overwrite the stored bar wins.
	suite.True(bars[0].Close.Equal(decimal.NewFromInt(100)))

	suite.cache.AddData([]types.Bar{dailyBar(1, 200)}, suite.instrument, types.Frequency1d, true)
	suite.cache.Request(rangeRequest(suite.instrument, 1, 30))
	bars = <-done
	suite.Len(bars, 1)
	suite.True(bars[0].Close.Equal(decimal.NewFromInt(200)))
}

func rangeRequest(instr types.Instrument, fromDay, toDay int) types.HistoricalDataRequest {
	return types.HistoricalDataRequest{
		Instrument: instr,
		Frequency:  types.Frequency1d,
		StartDate:  time.Date(2012, 6, fromDay, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2012, 6, toDay, 0, 0, 0, 0, time.UTC),
		Location:   types.DataLocationLocalOnly,
	}
}

func (suite *MemoryCacheTestSuite) TestRequestFiltersRange() {
	suite.cache.AddData([]types.Bar{dailyBar(1, 99), dailyBar(4, 100), dailyBar(8, 101), dailyBar(20, 102)},
		suite.instrument, types.Frequency1d, false)

	done := make(chan []types.Bar, 1)
	suite.cache.OnReply(func(_ types.HistoricalDataRequest, bars []types.Bar) {
		done <- bars
	})

	suite.cache.Request(rangeRequest(suite.instrument, 2, 10))
	bars := <-done
	suite.Len(bars, 2)
	suite.Equal(time.Date(2012, 6, 4, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(time.Date(2012, 6, 8, 0, 0, 0, 0, time.UTC), bars[1].Time)
}

func (suite *MemoryCacheTestSuite) TestMergeBarsKeepsOrder() {
	merged := MergeBars(
		[]types.Bar{dailyBar(2, 1), dailyBar(6, 2)},
		[]types.Bar{dailyBar(4, 3), dailyBar(1, 4), dailyBar(6, 5)},
		false,
	)

	suite.Len(merged, 4)
	for i := 1; i < len(merged); i++ {
		suite.True(merged[i-1].Time.Before(merged[i].Time))
	}
}

func (suite *MemoryCacheTestSuite) TestStorageRangeCovers() {
	r := StorageRange{
		Earliest: time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC),
		Latest:   time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.True(r.Covers(time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC)))
	suite.True(r.Covers(time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2012, 8, 1, 0, 0, 0, 0, time.UTC)))
	suite.False(r.Covers(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2012, 8, 1, 0, 0, 0, 0, time.UTC)))
	suite.False(r.Covers(time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC)))
}

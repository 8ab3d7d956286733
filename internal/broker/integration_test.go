package broker

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/quantra-lab/contango/internal/broker/contfut"
	"github.com/quantra-lab/contango/internal/cache"
	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/logger"
	"github.com/quantra-lab/contango/internal/provider"
	"github.com/quantra-lab/contango/internal/types"
)

// BrokerIntegrationTestSuite runs the full request path: broker, engine,
// in-memory cache, and a simulated provider, talking through the real
// asynchronous reply plumbing.
type BrokerIntegrationTestSuite struct {
	suite.Suite
	broker *Broker
	engine *contfut.Engine
	store  *cache.MemoryCache
	sim    *provider.SimProvider
	dir    *directory.InMemoryDirectory
	june   types.Instrument
	july   types.Instrument

	arrived chan types.DataArrived
	fronts  chan types.FrontContractFound
}

func TestBrokerIntegrationSuite(t *testing.T) {
	suite.Run(t, new(BrokerIntegrationTestSuite))
}

func (s *BrokerIntegrationTestSuite) SetupTest() {
	log := logger.NewNopLogger()
	ids := NewIDGenerator()

	s.dir = directory.NewInMemoryDirectory()
	s.engine = contfut.NewEngine(s.dir, calendar.NewWeekdayCalendar(), log, ids.Next)
	s.engine.SetClock(func() time.Time { return date(2012, time.July, 16) })

	s.store = cache.NewMemoryCache()
	s.broker = New(provider.NewRegistry(), s.store, s.engine, log, ids)
	s.broker.SetClock(func() time.Time { return date(2012, time.July, 16) })
	s.store.OnReply(s.broker.HandleCacheReply)

	s.sim = provider.NewSimProvider("sim")
	s.Require().NoError(s.sim.Connect())
	s.broker.RegisterProvider(s.sim)

	s.june = s.dir.Add(types.Instrument{
		Symbol:           "CLM2",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeFuture,
		Expiration:       optional.Some(date(2012, time.June, 20)),
		DataSourceID:     1,
		DataSourceName:   "sim",
	})
	s.july = s.dir.Add(types.Instrument{
		Symbol:           "CLN2",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeFuture,
		Expiration:       optional.Some(date(2012, time.July, 18)),
		DataSourceID:     1,
		DataSourceName:   "sim",
	})

	s.sim.Load(s.june.IDOrZero(), types.Frequency1d,
		s.fixture(s.june.IDOrZero(), date(2012, time.May, 21), date(2012, time.June, 20), 100, 1000))
	s.sim.Load(s.july.IDOrZero(), types.Frequency1d,
		s.fixture(s.july.IDOrZero(), date(2012, time.May, 21), date(2012, time.July, 13), 105, 2000))

	s.arrived = make(chan types.DataArrived, 4)
	s.fronts = make(chan types.FrontContractFound, 4)
	s.broker.Notifications().SubscribeDataArrived(func(n types.DataArrived) { s.arrived <- n })
	s.broker.Notifications().SubscribeFrontContract(func(n types.FrontContractFound) { s.fronts <- n })
}

func (s *BrokerIntegrationTestSuite) fixture(instrumentID int64, start, end time.Time, close, volume float64) []types.Bar {
	var bars []types.Bar

	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			continue
		}

		d := decimal.NewFromFloat(close)
		bars = append(bars, types.Bar{
			Open:         d,
			High:         d,
			Low:          d,
			Close:        d,
			Volume:       optional.Some(decimal.NewFromFloat(volume)),
			OpenInterest: optional.Some(decimal.NewFromFloat(volume * 5)),
			Time:         t,
			InstrumentID: instrumentID,
			Frequency:    types.Frequency1d,
		})
	}

	return bars
}

func (s *BrokerIntegrationTestSuite) continuous(rollover types.RolloverType, adjustment types.AdjustmentMode) types.Instrument {
	return types.Instrument{
		ID:               optional.Some[int64](100),
		Symbol:           "@CL",
		UnderlyingSymbol: "CL",
		Type:             types.InstrumentTypeContinuousFuture,
		DataSourceID:     1,
		DataSourceName:   "sim",
		ContFut: optional.Some(types.ContinuousFutureSpec{
			Month:          1,
			RolloverType:   rollover,
			RolloverDays:   2,
			AdjustmentMode: adjustment,
		}),
	}
}

func (s *BrokerIntegrationTestSuite) waitArrived() types.DataArrived {
	select {
	case n := <-s.arrived:
		return n
	case <-time.After(5 * time.Second):
		s.FailNow("no data-arrived notification")

		return types.DataArrived{}
	}
}

func (s *BrokerIntegrationTestSuite) TestContinuousFutureEndToEnd() {
	req := types.HistoricalDataRequest{
		Instrument: s.continuous(types.RolloverTypeTime, types.AdjustmentModeDifference),
		Frequency:  types.Frequency1d,
		StartDate:  date(2012, time.May, 1),
		EndDate:    date(2012, time.July, 6),
		Location:   types.DataLocationBoth,
	}

	id, err := s.broker.RequestHistoricalData(req)
	s.Require().NoError(err)

	n := s.waitArrived()
	s.Equal(id, n.Request.RequestID)
	s.Require().NotEmpty(n.Bars)

	// The difference adjustment lifts the pre-rollover history onto the July
	// contract's price level, leaving a seamless series.
	want := decimal.NewFromInt(105)
	for _, bar := range n.Bars {
		s.True(bar.Close.Equal(want), "close %s at %s", bar.Close, bar.Time)
	}

	for i := 1; i < len(n.Bars); i++ {
		s.True(n.Bars[i-1].Time.Before(n.Bars[i].Time))
	}

	// Everything drained: no leftover buffers for either contract.
	s.Equal(0, s.engine.Buffers().Refs(contfut.BufferKey{InstrumentID: s.june.IDOrZero(), Frequency: types.Frequency1d}))
	s.Equal(0, s.engine.Buffers().Refs(contfut.BufferKey{InstrumentID: s.july.IDOrZero(), Frequency: types.Frequency1d}))
}

func (s *BrokerIntegrationTestSuite) TestContinuousLegsPersistWhenAsked() {
	req := types.HistoricalDataRequest{
		Instrument:    s.continuous(types.RolloverTypeTime, types.AdjustmentModeNone),
		Frequency:     types.Frequency1d,
		StartDate:     date(2012, time.May, 1),
		EndDate:       date(2012, time.July, 6),
		Location:      types.DataLocationBoth,
		SaveToStorage: true,
	}

	_, err := s.broker.RequestHistoricalData(req)
	s.Require().NoError(err)
	s.waitArrived()

	// The raw contract legs landed in the cache under their own instruments.
	s.True(s.store.StorageInfo(s.june.IDOrZero(), types.Frequency1d).IsSome())
	s.True(s.store.StorageInfo(s.july.IDOrZero(), types.Frequency1d).IsSome())
}

func (s *BrokerIntegrationTestSuite) TestUnadjustedStitchPersistsUnderContinuousID() {
	req := types.HistoricalDataRequest{
		Instrument:    s.continuous(types.RolloverTypeTime, types.AdjustmentModeNone),
		Frequency:     types.Frequency1d,
		StartDate:     date(2012, time.May, 1),
		EndDate:       date(2012, time.July, 6),
		Location:      types.DataLocationBoth,
		SaveToStorage: true,
	}

	_, err := s.broker.RequestHistoricalData(req)
	s.Require().NoError(err)

	first := s.waitArrived()
	s.Require().NotEmpty(first.Bars)

	// The stitched series landed under the continuous instrument's own id,
	// not just under the raw contract legs.
	info := s.store.StorageInfo(int64(100), types.Frequency1d)
	s.Require().True(info.IsSome())

	// A later request inside the stored span is answered from the cache
	// alone: with the provider gone, a re-fetch would come back empty.
	s.sim.Disconnect()

	narrow := req
	narrow.StartDate = first.Bars[0].Time
	narrow.EndDate = first.Bars[len(first.Bars)-1].Time
	narrow.SaveToStorage = false

	id, err := s.broker.RequestHistoricalData(narrow)
	s.Require().NoError(err)

	n := s.waitArrived()
	s.Equal(id, n.Request.RequestID)
	s.Len(n.Bars, len(first.Bars))
}

func (s *BrokerIntegrationTestSuite) TestLocalOnlyRoundTrip() {
	bars := s.fixture(s.june.IDOrZero(), date(2012, time.June, 1), date(2012, time.June, 8), 100, 1000)
	s.store.AddData(bars, s.june, types.Frequency1d, false)

	req := types.HistoricalDataRequest{
		Instrument: s.june,
		Frequency:  types.Frequency1d,
		StartDate:  date(2012, time.June, 1),
		EndDate:    date(2012, time.June, 30),
		Location:   types.DataLocationLocalOnly,
	}

	id, err := s.broker.RequestHistoricalData(req)
	s.Require().NoError(err)

	n := s.waitArrived()
	s.Equal(id, n.Request.RequestID)
	s.Len(n.Bars, 6)
}

func (s *BrokerIntegrationTestSuite) TestFrontContractProbeByVolume() {
	s.engine.SetClock(func() time.Time { return date(2012, time.June, 12) })

	id, err := s.broker.RequestFrontContract(
		s.continuous(types.RolloverTypeVolume, types.AdjustmentModeNone),
		date(2012, time.June, 12))
	s.Require().NoError(err)

	select {
	case n := <-s.fronts:
		s.Equal(id, n.RequestID)
		s.Equal(date(2012, time.June, 12), n.AsOf)
		s.Require().True(n.Instrument.IsSome())
		// July's volume has led for longer than the streak threshold.
		s.Equal("CLN2", n.Instrument.Unwrap().Symbol)
	case <-time.After(5 * time.Second):
		s.FailNow("no front-contract notification")
	}
}

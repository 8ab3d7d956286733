// Package contfut builds back-adjusted continuous-future series by chaining
// expiring contracts under a configurable rollover policy.
package contfut

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/logger"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// IDSource supplies process-wide-unique positive request ids.
type IDSource func() int64

// Result is the outcome of one completed aggregate.
type Result struct {
	// Request is the continuous-future request the aggregate was opened for.
	Request types.HistoricalDataRequest
	// Bars is the stitched, trimmed series.
	Bars []types.Bar
	// Selected is the contract that was "selected" last, used to answer
	// front-contract queries.
	Selected optional.Option[types.Instrument]
	// RaiseFinalResult is false for front-contract probes, where only
	// Selected matters.
	RaiseFinalResult bool
}

type aggregate struct {
	request          types.HistoricalDataRequest
	spec             types.ContinuousFutureSpec
	contracts        []types.Instrument
	remaining        int
	raiseFinalResult bool
}

// Engine is the continuous-future construction engine. It selects the
// underlying contracts for a request, tracks the per-leg replies by aggregate
// id, and stitches the final series once the last leg lands.
type Engine struct {
	directory directory.Directory
	calendar  calendar.Calendar
	buffers   *BufferPool
	log       *logger.Logger
	nextID    IDSource
	now       func() time.Time

	mu         sync.Mutex
	aggregates map[int64]*aggregate
	legs       map[int64]int64
	rules      map[string]calendar.ExpirationRule
}

// NewEngine creates an engine. nextID must be the broker's id source so that
// leg ids never collide with request ids.
func NewEngine(dir directory.Directory, cal calendar.Calendar, log *logger.Logger, nextID IDSource) *Engine {
	return &Engine{
		directory:  dir,
		calendar:   cal,
		buffers:    NewBufferPool(),
		log:        log,
		nextID:     nextID,
		now:        time.Now,
		aggregates: make(map[int64]*aggregate),
		legs:       make(map[int64]int64),
		rules:      make(map[string]calendar.ExpirationRule),
	}
}

// SetClock overrides the engine's notion of "today". Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// RegisterExpirationRule installs the expiration rule for an underlying
// symbol, used by Time-rollover front-contract resolution.
func (e *Engine) RegisterExpirationRule(underlying string, rule calendar.ExpirationRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[underlying] = rule
}

// Buffers exposes the raw-bar buffer pool. The broker appends leg replies for
// plain contracts through it as well.
func (e *Engine) Buffers() *BufferPool {
	return e.buffers
}

// BeginAggregate selects the contracts needed to cover the request's date
// range and registers the aggregate under the request's id. It returns the
// per-contract sub-requests for the broker to dispatch. An empty leg list
// with a nil error means no contracts exist and the caller should deliver an
// empty result immediately.
func (e *Engine) BeginAggregate(req types.HistoricalDataRequest, raiseFinalResult bool) ([]types.HistoricalDataRequest, error) {
	if !req.Instrument.IsContinuousFuture() {
		return nil, errors.Newf(errors.ErrCodeMissingContFutSpec,
			"instrument %s has no continuous-future spec", req.Instrument.Symbol)
	}

	spec := req.Instrument.ContFut.Unwrap()

	contracts := e.SelectContracts(req.Instrument, spec, req.StartDate, req.EndDate)
	if len(contracts) == 0 {
		e.log.Info("no contracts found for continuous future",
			zap.String("underlying", req.Instrument.UnderlyingSymbol),
			zap.Int64("request_id", req.RequestID))

		return nil, nil
	}

	legs := e.buildLegs(req, spec, contracts)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.aggregates[req.RequestID] = &aggregate{
		request:          req,
		spec:             spec,
		contracts:        contracts,
		remaining:        len(legs),
		raiseFinalResult: raiseFinalResult,
	}

	for _, leg := range legs {
		e.legs[leg.RequestID] = req.RequestID
		e.buffers.Retain(BufferKey{leg.Instrument.IDOrZero(), leg.Frequency})
	}

	return legs, nil
}

// HasLeg reports whether the request id belongs to an in-flight aggregate leg.
func (e *Engine) HasLeg(requestID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.legs[requestID]

	return ok
}

// OnLegReply feeds one leg's bars into the aggregate's buffers and decrements
// the outstanding-leg counter. An errored leg is fed as arrived-empty so the
// counter and buffers are still cleaned up. When the last leg lands, the
// stitch runs synchronously on this reply path and the result is returned
// with done=true.
func (e *Engine) OnLegReply(leg types.HistoricalDataRequest, bars []types.Bar) (Result, bool) {
	e.mu.Lock()

	aggID, ok := e.legs[leg.RequestID]
	if !ok {
		e.mu.Unlock()
		e.log.Error("leg reply with no matching aggregate", zap.Int64("leg_id", leg.RequestID))

		return Result{}, false
	}

	delete(e.legs, leg.RequestID)

	// The bars must land in the buffer before the counter can reach zero:
	// whichever goroutine sees the last decrement runs the stitch, and its
	// snapshot has to include every leg.
	e.buffers.Append(BufferKey{leg.Instrument.IDOrZero(), leg.Frequency}, bars)

	agg := e.aggregates[aggID]
	agg.remaining--
	done := agg.remaining == 0

	if done {
		delete(e.aggregates, aggID)
	}

	e.mu.Unlock()

	if !done {
		return Result{}, false
	}

	series, selected := e.Stitch(agg.request, agg.spec, agg.contracts)

	return Result{
		Request:          agg.request,
		Bars:             series,
		Selected:         selected,
		RaiseFinalResult: agg.raiseFinalResult,
	}, true
}

func (e *Engine) buildLegs(req types.HistoricalDataRequest, spec types.ContinuousFutureSpec, contracts []types.Instrument) []types.HistoricalDataRequest {
	today := e.now()
	legs := make([]types.HistoricalDataRequest, 0, len(contracts))

	var prevExpiration time.Time

	for i, contract := range contracts {
		expiration := contract.Expiration.Unwrap()

		daysBack := 30 + 30*spec.Month
		if i == 0 {
			daysBack += 30
		} else {
			daysBack += calendarDaysBetween(prevExpiration, expiration)
		}

		windowEnd := expiration
		if today.Before(windowEnd) {
			windowEnd = today
		}

		legs = append(legs, types.HistoricalDataRequest{
			RequestID:     e.nextID(),
			Instrument:    contract,
			Frequency:     req.Frequency,
			StartDate:     windowEnd.AddDate(0, 0, -daysBack),
			EndDate:       windowEnd,
			Location:      req.Location,
			SaveToStorage: req.SaveToStorage,
			ParentID:      optional.Some(req.RequestID),
		})

		prevExpiration = expiration
	}

	return legs
}

func calendarDaysBetween(a, b time.Time) int {
	if b.Before(a) {
		a, b = b, a
	}

	return int(b.Sub(a).Hours() / 24)
}

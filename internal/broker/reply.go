package broker

import (
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantra-lab/contango/internal/cache"
	"github.com/quantra-lab/contango/internal/session"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// HandleProviderReply receives every provider reply. An errored reply is
// downgraded to arrived-empty after surfacing the error, so leg counters and
// buffers are still cleaned up.
func (b *Broker) HandleProviderReply(req types.HistoricalDataRequest, bars []types.Bar, err error) {
	if err != nil {
		b.publishRequestError(
			errors.Wrap(errors.ErrCodeProviderReplyFailed, "provider reply failed", err),
			req.RequestID)

		bars = nil
	}

	if b.engine.HasLeg(req.RequestID) {
		b.handleEngineLeg(req, bars)

		return
	}

	if req.IsSubRequest() {
		b.handleSplitLeg(req, bars)

		return
	}

	b.mu.Lock()
	orig, ok := b.originals[req.RequestID]
	b.mu.Unlock()

	if !ok {
		b.invariant("provider reply with unknown correlation id", req.RequestID)

		return
	}

	if req.SaveToStorage && len(bars) > 0 {
		b.store.AddData(bars, req.Instrument, req.Frequency, false)
	}

	b.deliver(orig, bars)
}

// HandleCacheReply receives every cache reply and forwards it to the caller.
func (b *Broker) HandleCacheReply(req types.HistoricalDataRequest, bars []types.Bar) {
	b.mu.Lock()
	orig, ok := b.originals[req.RequestID]
	b.mu.Unlock()

	if !ok {
		b.invariant("cache reply with unknown correlation id", req.RequestID)

		return
	}

	b.deliver(orig, bars)
}

// handleEngineLeg feeds one continuous-future leg into the engine; the last
// leg triggers the stitch synchronously on this reply path.
func (b *Broker) handleEngineLeg(leg types.HistoricalDataRequest, bars []types.Bar) {
	if leg.SaveToStorage && len(bars) > 0 {
		b.store.AddData(bars, leg.Instrument, leg.Frequency, false)
	}

	result, done := b.engine.OnLegReply(leg, bars)
	if !done {
		return
	}

	if result.RaiseFinalResult {
		// An unadjusted stitched series is stable across request windows, so
		// it can back later coverage checks under the continuous instrument's
		// own id. Adjusted series rebase on every rollover inside the window
		// and are never persisted.
		if result.Request.SaveToStorage && len(result.Bars) > 0 &&
			result.Request.Instrument.ContFut.Unwrap().AdjustmentMode == types.AdjustmentModeNone {
			b.store.AddData(result.Bars, result.Request.Instrument, result.Request.Frequency, false)
		}

		b.deliver(result.Request, result.Bars)

		return
	}

	// Front-contract probe: only the trailing selected contract matters.
	b.mu.Lock()
	asOf, ok := b.frontProbes[result.Request.RequestID]
	delete(b.frontProbes, result.Request.RequestID)
	b.mu.Unlock()

	if !ok {
		asOf = b.now()
	}

	b.hub.PublishFrontContract(types.FrontContractFound{
		RequestID:  result.Request.RequestID,
		Instrument: result.Selected,
		AsOf:       asOf,
	})
}

// handleSplitLeg settles one leg of a split request. Persisting legs merge
// into the cache before the outstanding count is touched, so the final cache
// request always sees complete coverage.
func (b *Broker) handleSplitLeg(leg types.HistoricalDataRequest, bars []types.Bar) {
	if leg.SaveToStorage && len(bars) > 0 {
		b.store.AddData(bars, leg.Instrument, leg.Frequency, false)
	}

	parentID := leg.ParentID.Unwrap()

	b.mu.Lock()

	group, ok := b.groups[parentID]
	if !ok {
		b.mu.Unlock()
		b.invariant("split-leg reply with unknown parent id", leg.RequestID)

		return
	}

	delete(group.outstanding, leg.RequestID)

	if !group.persist {
		group.collected = append(group.collected, bars...)
	}

	finished := len(group.outstanding) == 0
	if finished {
		delete(b.groups, parentID)
	}

	b.mu.Unlock()

	if !finished {
		return
	}

	if group.persist {
		// The cache now covers the whole original range; answer the original
		// request from it.
		b.store.Request(group.original)

		return
	}

	// Combine the legs with the cached middle in memory, skipping another
	// cache round-trip.
	stored := b.store.Stored(
		group.original.Instrument.IDOrZero(),
		group.original.Frequency,
		group.original.StartDate,
		group.original.EndDate)

	b.deliver(group.original, cache.MergeBars(stored, group.collected, false))
}

// deliver applies the session treatment and publishes the final result.
func (b *Broker) deliver(req types.HistoricalDataRequest, bars []types.Bar) {
	bars = session.Apply(bars, req)

	b.mu.Lock()
	delete(b.originals, req.RequestID)
	b.mu.Unlock()

	b.hub.PublishDataArrived(types.DataArrived{Request: req, Bars: bars})
}

// invariant reports a reply that matches no bookkeeping entry. This is a
// programming-logic fault, not a data problem; it is logged loudly and
// surfaced as an error notification rather than silently dropped.
func (b *Broker) invariant(message string, correlationID int64) {
	b.log.Error(message, zap.Int64("correlation_id", correlationID))

	b.hub.PublishError(types.BrokerError{
		Code:          int(errors.ErrCodeUnknownCorrelationID),
		Message:       message,
		CorrelationID: optional.Some(correlationID),
	})
}

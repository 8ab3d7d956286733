// Package broker routes historical-data requests between the local cache and
// the external providers, correlates the asynchronous replies, and delegates
// continuous-future requests to the construction engine.
package broker

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/quantra-lab/contango/internal/broker/contfut"
	"github.com/quantra-lab/contango/internal/cache"
	"github.com/quantra-lab/contango/internal/logger"
	"github.com/quantra-lab/contango/internal/provider"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// splitGroup tracks the outstanding legs of one split request.
type splitGroup struct {
	original    types.HistoricalDataRequest
	outstanding map[int64]types.HistoricalDataRequest
	persist     bool
	collected   []types.Bar
}

// Broker is the historical-data request orchestrator.
type Broker struct {
	providers *provider.Registry
	store     cache.BarCache
	engine    *contfut.Engine
	hub       *NotificationHub
	validate  *validator.Validate
	log       *logger.Logger
	ids       *IDGenerator
	now       func() time.Time

	// Each table below is owned by mu; compound check-then-act sequences on
	// them run under a single acquisition.
	mu          sync.Mutex
	originals   map[int64]types.HistoricalDataRequest
	groups      map[int64]*splitGroup
	frontProbes map[int64]time.Time
}

// New creates a broker. The engine must share the broker's id source so leg
// ids never collide with request ids.
func New(providers *provider.Registry, store cache.BarCache, engine *contfut.Engine, log *logger.Logger, ids *IDGenerator) *Broker {
	return &Broker{
		providers:   providers,
		store:       store,
		engine:      engine,
		hub:         NewNotificationHub(),
		validate:    validator.New(),
		log:         log,
		ids:         ids,
		now:         time.Now,
		originals:   make(map[int64]types.HistoricalDataRequest),
		groups:      make(map[int64]*splitGroup),
		frontProbes: make(map[int64]time.Time),
	}
}

// Notifications returns the hub callers subscribe on.
func (b *Broker) Notifications() *NotificationHub {
	return b.hub
}

// SetClock overrides the broker's notion of "now". Used by tests.
func (b *Broker) SetClock(now func() time.Time) {
	b.now = now
}

// RegisterProvider adds the provider to the registry and wires its replies
// into the broker.
func (b *Broker) RegisterProvider(p provider.Provider) {
	p.OnReply(b.HandleProviderReply)
	b.providers.Register(p)
}

// RequestHistoricalData validates and dispatches a historical-data request.
// It returns the assigned correlation id immediately; the data arrives later
// through a data-arrived notification. Configuration errors (unknown or
// disconnected provider, malformed request) fail synchronously and dispatch
// nothing.
func (b *Broker) RequestHistoricalData(req types.HistoricalDataRequest) (int64, error) {
	if req.RequestID == 0 {
		req.RequestID = b.ids.Next()
	}

	if err := req.Validate(b.validate); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid historical data request", err)
	}

	b.mu.Lock()
	b.originals[req.RequestID] = req
	b.mu.Unlock()

	var err error

	switch req.Location {
	case types.DataLocationLocalOnly:
		b.store.Request(req)
	case types.DataLocationExternalOnly:
		err = b.routeExternal(req)
	default:
		err = b.routeBoth(req)
	}

	if err != nil {
		b.mu.Lock()
		delete(b.originals, req.RequestID)
		b.mu.Unlock()

		return 0, err
	}

	return req.RequestID, nil
}

// RequestFrontContract resolves the currently active contract of a continuous
// future as of the given date. The answer arrives through a front-contract
// notification carrying the returned request id.
func (b *Broker) RequestFrontContract(instr types.Instrument, asOf time.Time) (int64, error) {
	if !instr.IsContinuousFuture() {
		return 0, errors.Newf(errors.ErrCodeMissingContFutSpec,
			"instrument %s has no continuous-future spec", instr.Symbol)
	}

	id := b.ids.Next()
	spec := instr.ContFut.Unwrap()

	if spec.RolloverType == types.RolloverTypeTime {
		// Time rollover resolves from the expiration calendar alone; no bar
		// data is fetched.
		go func() {
			found, err := b.engine.FrontContractByTime(instr, asOf)
			if err != nil {
				b.publishRequestError(err, id)

				found = optional.None[types.Instrument]()
			}

			b.hub.PublishFrontContract(types.FrontContractFound{
				RequestID:  id,
				Instrument: found,
				AsOf:       asOf,
			})
		}()

		return id, nil
	}

	// Every other rollover type needs real volume/OI history: run a 1-day
	// lookback through the regular selection and stitch, keeping only the
	// trailing selected contract.
	probe := types.HistoricalDataRequest{
		RequestID:  id,
		Instrument: instr,
		Frequency:  types.Frequency1d,
		StartDate:  asOf.AddDate(0, 0, -1),
		EndDate:    asOf,
		Location:   types.DataLocationBoth,
	}

	b.mu.Lock()
	b.frontProbes[id] = asOf
	b.mu.Unlock()

	legs, err := b.engine.BeginAggregate(probe, false)
	if err != nil {
		b.mu.Lock()
		delete(b.frontProbes, id)
		b.mu.Unlock()

		return 0, err
	}

	if len(legs) == 0 {
		b.mu.Lock()
		delete(b.frontProbes, id)
		b.mu.Unlock()

		go b.hub.PublishFrontContract(types.FrontContractFound{
			RequestID:  id,
			Instrument: optional.None[types.Instrument](),
			AsOf:       asOf,
		})

		return id, nil
	}

	b.dispatchLegs(legs)

	return id, nil
}

func (b *Broker) routeExternal(req types.HistoricalDataRequest) error {
	if req.Instrument.IsContinuousFuture() {
		return b.beginContinuous(req)
	}

	p, err := b.providers.GetConnected(req.Instrument.DataSourceName)
	if err != nil {
		return err
	}

	return p.Request(req)
}

func (b *Broker) routeBoth(req types.HistoricalDataRequest) error {
	if req.Instrument.IsContinuousFuture() {
		spec := req.Instrument.ContFut.Unwrap()
		if spec.AdjustmentMode == types.AdjustmentModeNone {
			info := b.store.StorageInfo(req.Instrument.IDOrZero(), req.Frequency)
			if info.IsSome() && info.Unwrap().Covers(req.StartDate, req.EndDate) {
				b.store.Request(req)

				return nil
			}
		}

		// Splitting a ratio- or difference-adjusted series would corrupt the
		// adjustment baseline; the engine always sees the whole range.
		return b.beginContinuous(req)
	}

	p, perr := b.providers.GetConnected(req.Instrument.DataSourceName)
	if perr != nil {
		// Best-effort degrade: answer from the cache, but surface the
		// availability problem instead of failing silently.
		b.store.Request(req)
		b.publishRequestError(perr, req.RequestID)

		return nil
	}

	info := b.store.StorageInfo(req.Instrument.IDOrZero(), req.Frequency)
	if info.IsSome() && info.Unwrap().Covers(req.StartDate, req.EndDate) {
		b.store.Request(req)

		return nil
	}

	if info.IsNone() {
		if b.noFurtherData(req.Instrument) {
			b.store.Request(req)

			return nil
		}

		return p.Request(req)
	}

	b.dispatchSplit(req, p, info.Unwrap())

	return nil
}

func (b *Broker) beginContinuous(req types.HistoricalDataRequest) error {
	legs, err := b.engine.BeginAggregate(req, true)
	if err != nil {
		return err
	}

	if len(legs) == 0 {
		// No contracts resolved: the caller gets an empty bar list, not an
		// error and not a hang.
		go b.deliver(req, nil)

		return nil
	}

	b.dispatchLegs(legs)

	return nil
}

// dispatchLegs sends engine legs to their providers together. A leg whose
// provider is unavailable is fed back as arrived-empty so the aggregate's
// counter still drains.
func (b *Broker) dispatchLegs(legs []types.HistoricalDataRequest) {
	p := pool.New().WithMaxGoroutines(len(legs))

	for _, leg := range legs {
		leg := leg

		p.Go(func() {
			prov, err := b.providers.GetConnected(leg.Instrument.DataSourceName)
			if err == nil {
				err = prov.Request(leg)
			}

			if err != nil {
				b.publishRequestError(err, leg.RequestID)
				b.handleEngineLeg(leg, nil)
			}
		})
	}

	p.Wait()
}

// dispatchSplit issues up to two sub-requests covering only the missing
// ranges, offset by half a bar period from the stored boundaries so the
// boundary bar is neither re-fetched nor duplicated.
func (b *Broker) dispatchSplit(req types.HistoricalDataRequest, p provider.Provider, stored cache.StorageRange) {
	half := req.Frequency.Duration() / 2

	var legs []types.HistoricalDataRequest

	if req.StartDate.Before(stored.Earliest) {
		legs = append(legs, b.subRequest(req, req.StartDate, stored.Earliest.Add(-half)))
	}

	if req.EndDate.After(stored.Latest) {
		legs = append(legs, b.subRequest(req, stored.Latest.Add(half), req.EndDate))
	}

	if len(legs) == 0 {
		b.store.Request(req)

		return
	}

	group := &splitGroup{
		original:    req,
		outstanding: make(map[int64]types.HistoricalDataRequest, len(legs)),
		persist:     req.SaveToStorage,
	}
	for _, leg := range legs {
		group.outstanding[leg.RequestID] = leg
	}

	b.mu.Lock()
	b.groups[req.RequestID] = group
	b.mu.Unlock()

	// Both legs go out together; staggering them invites provider-side
	// session inconsistencies.
	pl := pool.New().WithMaxGoroutines(len(legs))

	for _, leg := range legs {
		leg := leg

		pl.Go(func() {
			if err := p.Request(leg); err != nil {
				b.publishRequestError(err, leg.RequestID)
				b.handleSplitLeg(leg, nil)
			}
		})
	}

	pl.Wait()
}

func (b *Broker) subRequest(parent types.HistoricalDataRequest, start, end time.Time) types.HistoricalDataRequest {
	return types.HistoricalDataRequest{
		RequestID:     b.ids.Next(),
		Instrument:    parent.Instrument,
		Frequency:     parent.Frequency,
		StartDate:     start,
		EndDate:       end,
		Location:      parent.Location,
		SaveToStorage: parent.SaveToStorage,
		ParentID:      optional.Some(parent.RequestID),
	}
}

// noFurtherData reports whether an expired instrument can produce no data
// beyond what is stored: its expiration has passed and the session close on
// the expiration day is behind us.
func (b *Broker) noFurtherData(instr types.Instrument) bool {
	now := b.now()
	if !instr.ExpiresBefore(now) {
		return false
	}

	return now.After(instr.Sessions.RegularClose(instr.Expiration.Unwrap()))
}

func (b *Broker) publishRequestError(err error, correlationID int64) {
	b.log.Warn("request error",
		zap.Int64("correlation_id", correlationID),
		zap.Error(err))

	b.hub.PublishError(types.BrokerError{
		Code:          int(errors.GetCode(err)),
		Message:       err.Error(),
		CorrelationID: optional.Some(correlationID),
	})
}

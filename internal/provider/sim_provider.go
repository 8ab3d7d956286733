package provider

import (
	"sync"

	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

type seriesKey struct {
	instrumentID int64
	frequency    types.Frequency
}

// SimProvider serves preloaded bar fixtures asynchronously. It stands in for
// an external data source in the demo command and in tests.
type SimProvider struct {
	name string

	mu        sync.RWMutex
	connected bool
	series    map[seriesKey][]types.Bar
	onReply   ReplyFunc
}

// NewSimProvider creates a disconnected simulated provider.
func NewSimProvider(name string) *SimProvider {
	return &SimProvider{
		name:   name,
		series: make(map[seriesKey][]types.Bar),
	}
}

// Name implements Provider.
func (p *SimProvider) Name() string {
	return p.name
}

// Connected implements Provider.
func (p *SimProvider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.connected
}

// Connect implements Provider.
func (p *SimProvider) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true

	return nil
}

// Disconnect drops the simulated session.
func (p *SimProvider) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
}

// OnReply implements Provider.
func (p *SimProvider) OnReply(fn ReplyFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReply = fn
}

// Load installs the fixture series served for one (instrument, frequency)
// key. Bars must be in time order.
func (p *SimProvider) Load(instrumentID int64, freq types.Frequency, bars []types.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series[seriesKey{instrumentID, freq}] = bars
}

// Request implements Provider. The reply carries the fixture bars inside the
// request's date range and is delivered on its own goroutine.
func (p *SimProvider) Request(req types.HistoricalDataRequest) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.connected {
		return errors.Newf(errors.ErrCodeDataSourceNotConnected, "data source %s is not connected", p.name)
	}

	if p.onReply == nil {
		return errors.New(errors.ErrCodeInvalidConfiguration, "no reply handler installed")
	}

	bars := p.series[seriesKey{req.Instrument.IDOrZero(), req.Frequency}]

	var result []types.Bar

	for _, bar := range bars {
		if bar.Time.Before(req.StartDate) || bar.Time.After(req.EndDate) {
			continue
		}

		result = append(result, bar)
	}

	handler := p.onReply

	go handler(req, result, nil)

	return nil
}

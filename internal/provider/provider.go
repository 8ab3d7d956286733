// Package provider defines the external historical-data provider contract and
// the registry the broker routes through. Real wire adapters (brokerage/API
// clients) live outside this module; SimProvider implements the contract for
// wiring and tests.
package provider

import "github.com/quantra-lab/contango/internal/types"

// ReplyFunc receives the asynchronous answer to a provider request. err is set
// when the provider failed to produce data; bars is nil in that case.
type ReplyFunc func(req types.HistoricalDataRequest, bars []types.Bar, err error)

// Provider is one external historical-data source, keyed by name.
type Provider interface {
	// Name returns the provider's registry key.
	Name() string
	// Connected reports whether the provider can accept requests.
	Connected() bool
	// Connect establishes the provider session.
	Connect() error
	// Request dispatches a historical-data request. The reply arrives
	// asynchronously through the handler installed with OnReply; the
	// correlation id travels on the request itself.
	Request(req types.HistoricalDataRequest) error
	// OnReply installs the reply handler. Must be called before Request.
	OnReply(fn ReplyFunc)
}

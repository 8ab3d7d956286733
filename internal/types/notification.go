package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// DataArrived is delivered to a caller when a historical-data request
// completes. Request is the request exactly as the caller issued it.
type DataArrived struct {
	Request HistoricalDataRequest
	Bars    []Bar
}

// FrontContractFound is delivered when a front-contract query resolves.
// Instrument is absent when no contract matched.
type FrontContractFound struct {
	RequestID  int64
	Instrument optional.Option[Instrument]
	AsOf       time.Time
}

// BrokerError is delivered for failures that cannot be expressed as an empty
// or partial result. CorrelationID is absent when the failure cannot be tied
// to a specific request.
type BrokerError struct {
	Code          int
	Message       string
	CorrelationID optional.Option[int64]
}

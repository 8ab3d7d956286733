package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
)

// DataLocation is the caller's preference for where a historical-data request
// may be satisfied from.
type DataLocation string

const (
	DataLocationLocalOnly    DataLocation = "LOCAL_ONLY"
	DataLocationExternalOnly DataLocation = "EXTERNAL_ONLY"
	DataLocationBoth         DataLocation = "BOTH"
)

// HistoricalDataRequest asks for a bar series for one instrument over a date
// range. RequestID is assigned by the broker and links asynchronous replies
// back to this request.
type HistoricalDataRequest struct {
	RequestID  int64        `yaml:"request_id" json:"request_id"`
	Instrument Instrument   `yaml:"instrument" json:"instrument" validate:"required"`
	Frequency  Frequency    `yaml:"frequency" json:"frequency" validate:"required,oneof=1m 5m 15m 30m 1h 4h 1d 1w 1M"`
	StartDate  time.Time    `yaml:"start_date" json:"start_date" validate:"required"`
	EndDate    time.Time    `yaml:"end_date" json:"end_date" validate:"required,gtfield=StartDate"`
	Location   DataLocation `yaml:"location" json:"location" validate:"required,oneof=LOCAL_ONLY EXTERNAL_ONLY BOTH"`
	// SaveToStorage asks the broker to persist provider replies to the cache.
	SaveToStorage bool `yaml:"save_to_storage" json:"save_to_storage"`
	// RTHOnly restricts the result to regular trading hours.
	RTHOnly bool `yaml:"rth_only" json:"rth_only"`
	// ParentID links a generated sub-request back to the request it was split
	// from. Absent on caller-issued requests.
	ParentID optional.Option[int64] `yaml:"parent_id" json:"parent_id"`
}

// IsSubRequest reports whether this request was generated as a leg of a split.
func (r HistoricalDataRequest) IsSubRequest() bool {
	return r.ParentID.IsSome()
}

// Validate checks the request's structural constraints.
func (r HistoricalDataRequest) Validate(v *validator.Validate) error {
	return v.Struct(r)
}

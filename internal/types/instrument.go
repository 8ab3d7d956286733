package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// InstrumentType classifies an instrument.
type InstrumentType string

const (
	InstrumentTypeFuture           InstrumentType = "FUTURE"
	InstrumentTypeContinuousFuture InstrumentType = "CONTINUOUS_FUTURE"
	InstrumentTypeStock            InstrumentType = "STOCK"
	InstrumentTypeIndex            InstrumentType = "INDEX"
	InstrumentTypeForex            InstrumentType = "FOREX"
)

// RolloverType selects the rule that decides when a continuous future switches
// from the front contract to the back contract.
type RolloverType string

const (
	RolloverTypeTime                  RolloverType = "TIME"
	RolloverTypeVolume                RolloverType = "VOLUME"
	RolloverTypeOpenInterest          RolloverType = "OPEN_INTEREST"
	RolloverTypeVolumeAndOpenInterest RolloverType = "VOLUME_AND_OPEN_INTEREST"
	RolloverTypeVolumeOrOpenInterest  RolloverType = "VOLUME_OR_OPEN_INTEREST"
)

// AdjustmentMode selects how historical prices are rescaled at a rollover to
// keep the stitched series continuous.
type AdjustmentMode string

const (
	AdjustmentModeNone       AdjustmentMode = "NONE"
	AdjustmentModeRatio      AdjustmentMode = "RATIO"
	AdjustmentModeDifference AdjustmentMode = "DIFFERENCE"
)

// ContinuousFutureSpec describes how a continuous future chains its underlying
// contracts.
type ContinuousFutureSpec struct {
	// Month is 1 for the front month; N selects the Nth forward contract as
	// the series actually emitted.
	Month        int          `yaml:"month" json:"month" validate:"required,min=1"`
	RolloverType RolloverType `yaml:"rollover_type" json:"rollover_type" validate:"required,oneof=TIME VOLUME OPEN_INTEREST VOLUME_AND_OPEN_INTEREST VOLUME_OR_OPEN_INTEREST"`
	// RolloverDays is the policy threshold: business days before expiration
	// for TIME, consecutive qualifying days for the volume/OI rules.
	RolloverDays   int            `yaml:"rollover_days" json:"rollover_days" validate:"min=0"`
	AdjustmentMode AdjustmentMode `yaml:"adjustment_mode" json:"adjustment_mode" validate:"required,oneof=NONE RATIO DIFFERENCE"`
	// MonthUsage marks which calendar months' contracts are eligible,
	// index 0 = January. An all-false mask means every month is eligible.
	MonthUsage [12]bool `yaml:"month_usage" json:"month_usage"`
}

// MonthEnabled reports whether contracts expiring in the given calendar month
// participate in the chain.
func (s ContinuousFutureSpec) MonthEnabled(m time.Month) bool {
	for _, used := range s.MonthUsage {
		if used {
			return s.MonthUsage[int(m)-1]
		}
	}

	// No month explicitly enabled: treat the mask as all-enabled.
	return true
}

// Instrument identifies a tradable (or synthetic) instrument.
type Instrument struct {
	// ID is nil until the instrument has been persisted by the directory.
	ID               optional.Option[int64] `yaml:"id" json:"id"`
	Symbol           string                 `yaml:"symbol" json:"symbol" validate:"required"`
	UnderlyingSymbol string                 `yaml:"underlying_symbol" json:"underlying_symbol"`
	Type             InstrumentType         `yaml:"type" json:"type" validate:"required"`
	// Expiration is absent for non-expiring instruments.
	Expiration     optional.Option[time.Time] `yaml:"expiration" json:"expiration"`
	DataSourceID   int64                      `yaml:"data_source_id" json:"data_source_id"`
	DataSourceName string                     `yaml:"data_source_name" json:"data_source_name"`
	// ContFut is present only when Type is CONTINUOUS_FUTURE.
	ContFut optional.Option[ContinuousFutureSpec] `yaml:"cont_fut" json:"cont_fut"`
	// Sessions defines the instrument's trading-session windows.
	Sessions SessionSchedule `yaml:"sessions" json:"sessions"`
}

// IsContinuousFuture reports whether the instrument is a continuous future
// carrying a spec.
func (i Instrument) IsContinuousFuture() bool {
	return i.Type == InstrumentTypeContinuousFuture && i.ContFut.IsSome()
}

// IDOrZero returns the instrument id, or 0 when not yet persisted.
func (i Instrument) IDOrZero() int64 {
	return i.ID.TakeOr(0)
}

// ExpiresBefore reports whether the instrument expires strictly before t.
// Non-expiring instruments never expire.
func (i Instrument) ExpiresBefore(t time.Time) bool {
	if i.Expiration.IsNone() {
		return false
	}

	return i.Expiration.Unwrap().Before(t)
}

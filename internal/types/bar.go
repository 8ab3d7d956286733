package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Bar is a single OHLC bar of a price series. Prices are exact decimals so
// that rollover adjustments can be compounded across the whole series without
// accumulating binary rounding error.
type Bar struct {
	Open  decimal.Decimal `yaml:"open" json:"open" csv:"open"`
	High  decimal.Decimal `yaml:"high" json:"high" csv:"high"`
	Low   decimal.Decimal `yaml:"low" json:"low" csv:"low"`
	Close decimal.Decimal `yaml:"close" json:"close" csv:"close"`
	// Volume is absent for instruments whose feed does not report it.
	Volume optional.Option[decimal.Decimal] `yaml:"volume" json:"volume"`
	// OpenInterest is only populated for futures contracts.
	OpenInterest optional.Option[decimal.Decimal] `yaml:"open_interest" json:"open_interest"`
	// Dividend carries a dividend or split amount attached to this bar.
	Dividend optional.Option[decimal.Decimal] `yaml:"dividend" json:"dividend"`
	// AdjOpen/AdjHigh/AdjLow/AdjClose are provider-supplied adjusted prices,
	// distinct from the rollover adjustment applied during stitching.
	AdjOpen  optional.Option[decimal.Decimal] `yaml:"adj_open" json:"adj_open"`
	AdjHigh  optional.Option[decimal.Decimal] `yaml:"adj_high" json:"adj_high"`
	AdjLow   optional.Option[decimal.Decimal] `yaml:"adj_low" json:"adj_low"`
	AdjClose optional.Option[decimal.Decimal] `yaml:"adj_close" json:"adj_close"`

	Time         time.Time `yaml:"time" json:"time" csv:"time"`
	InstrumentID int64     `yaml:"instrument_id" json:"instrument_id" csv:"instrument_id"`
	Frequency    Frequency `yaml:"frequency" json:"frequency" csv:"frequency"`
}

// AdjustDifference returns a copy of the bar with the additive rollover
// adjustment d applied to all four prices.
func (b Bar) AdjustDifference(d decimal.Decimal) Bar {
	b.Open = b.Open.Add(d)
	b.High = b.High.Add(d)
	b.Low = b.Low.Add(d)
	b.Close = b.Close.Add(d)

	return b
}

// AdjustRatio returns a copy of the bar with the multiplicative rollover
// adjustment r applied to all four prices.
func (b Bar) AdjustRatio(r decimal.Decimal) Bar {
	b.Open = b.Open.Mul(r)
	b.High = b.High.Mul(r)
	b.Low = b.Low.Mul(r)
	b.Close = b.Close.Mul(r)

	return b
}

// VolumeOrZero returns the bar's volume, or zero when the feed reported none.
func (b Bar) VolumeOrZero() decimal.Decimal {
	return b.Volume.TakeOr(decimal.Zero)
}

// OpenInterestOrZero returns the bar's open interest, or zero when absent.
func (b Bar) OpenInterestOrZero() decimal.Decimal {
	return b.OpenInterest.TakeOr(decimal.Zero)
}

package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/quantra-lab/contango/internal/types"
)

// DataGenerator generates realistic bar series for testing and benchmarking.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bar data is generated.
type GeneratorConfig struct {
	// InstrumentID is stamped on every generated bar.
	InstrumentID int64
	// StartTime is the beginning of the series.
	StartTime time.Time
	// Interval is the duration between bars.
	Interval time.Duration
	// Frequency is stamped on every generated bar.
	Frequency types.Frequency
	// Count is the number of bars to generate.
	Count int
	// InitialPrice is the starting price.
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical bar volatility).
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish).
	Trend float64
	// VolumeBase is the average volume per bar.
	VolumeBase float64
	// OpenInterestBase is the average open interest per bar; zero leaves open
	// interest unset.
	OpenInterestBase float64
	// SkipWeekends drops Saturday and Sunday bars.
	SkipWeekends bool
}

// DefaultConfig returns a sensible default configuration for a daily futures
// series.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		InstrumentID:     1,
		StartTime:        time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC),
		Interval:         24 * time.Hour,
		Frequency:        types.Frequency1d,
		Count:            120,
		InitialPrice:     100.0,
		Volatility:       0.01,
		Trend:            0.0,
		VolumeBase:       10000,
		OpenInterestBase: 50000,
		SkipWeekends:     true,
	}
}

// Generate creates a bar series following a geometric Brownian motion model.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, 0, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for len(bars) < config.Count {
		if config.SkipWeekends {
			for wd := currentTime.Weekday(); wd == time.Saturday || wd == time.Sunday; wd = currentTime.Weekday() {
				currentTime = currentTime.Add(config.Interval)
			}
		}

		open := currentPrice

		// Box-Muller transform for a normally distributed price change.
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)
		change := config.Volatility*z + drift
		close := open * (1 + change)

		high := math.Max(open, close) * (1 + g.rng.Float64()*config.Volatility/2)
		low := math.Min(open, close) * (1 - g.rng.Float64()*config.Volatility/2)

		volume := config.VolumeBase * (0.7 + 0.6*g.rng.Float64())

		bar := types.Bar{
			Open:         decimal.NewFromFloat(open).Round(4),
			High:         decimal.NewFromFloat(high).Round(4),
			Low:          decimal.NewFromFloat(low).Round(4),
			Close:        decimal.NewFromFloat(close).Round(4),
			Volume:       optional.Some(decimal.NewFromFloat(volume).Round(0)),
			Time:         currentTime,
			InstrumentID: config.InstrumentID,
			Frequency:    config.Frequency,
		}

		if config.OpenInterestBase > 0 {
			oi := config.OpenInterestBase * (0.8 + 0.4*g.rng.Float64())
			bar.OpenInterest = optional.Some(decimal.NewFromFloat(oi).Round(0))
		}

		bars = append(bars, bar)

		currentPrice = close
		currentTime = currentTime.Add(config.Interval)
	}

	return bars
}

package types

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BarTestSuite struct {
	suite.Suite
}

func TestBarSuite(t *testing.T) {
	suite.Run(t, new(BarTestSuite))
}

func (suite *BarTestSuite) TestAdjustDifference() {
	bar := Bar{
		Open:  decimal.RequireFromString("100.25"),
		High:  decimal.RequireFromString("101.50"),
		Low:   decimal.RequireFromString("99.75"),
		Close: decimal.RequireFromString("100.00"),
		Time:  time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	adjusted := bar.AdjustDifference(decimal.RequireFromString("-0.35"))

	suite.True(adjusted.Open.Equal(decimal.RequireFromString("99.90")))
	suite.True(adjusted.High.Equal(decimal.RequireFromString("101.15")))
	suite.True(adjusted.Low.Equal(decimal.RequireFromString("99.40")))
	suite.True(adjusted.Close.Equal(decimal.RequireFromString("99.65")))

	// Original bar is untouched.
	suite.True(bar.Close.Equal(decimal.RequireFromString("100.00")))
}

func (suite *BarTestSuite) TestAdjustRatio() {
	bar := Bar{
		Open:  decimal.RequireFromString("10"),
		High:  decimal.RequireFromString("12"),
		Low:   decimal.RequireFromString("8"),
		Close: decimal.RequireFromString("11"),
	}

	adjusted := bar.AdjustRatio(decimal.RequireFromString("1.5"))

	suite.True(adjusted.Open.Equal(decimal.RequireFromString("15")))
	suite.True(adjusted.High.Equal(decimal.RequireFromString("18")))
	suite.True(adjusted.Low.Equal(decimal.RequireFromString("12")))
	suite.True(adjusted.Close.Equal(decimal.RequireFromString("16.5")))
}

func (suite *BarTestSuite) TestAdjustmentsCompoundExactly() {
	// Two difference adjustments applied in sequence must compound without
	// rounding error: 100.10 - 0.33 + 0.21 = 99.98 exactly.
	bar := Bar{Close: decimal.RequireFromString("100.10")}
	bar = bar.AdjustDifference(decimal.RequireFromString("-0.33"))
	bar = bar.AdjustDifference(decimal.RequireFromString("0.21"))

	suite.True(bar.Close.Equal(decimal.RequireFromString("99.98")), "got %s", bar.Close)
}

func (suite *BarTestSuite) TestVolumeOrZero() {
	bar := Bar{}
	suite.True(bar.VolumeOrZero().IsZero())
	suite.True(bar.OpenInterestOrZero().IsZero())

	bar.Volume = optional.Some(decimal.NewFromInt(1200))
	bar.OpenInterest = optional.Some(decimal.NewFromInt(540))
	suite.True(bar.VolumeOrZero().Equal(decimal.NewFromInt(1200)))
	suite.True(bar.OpenInterestOrZero().Equal(decimal.NewFromInt(540)))
}

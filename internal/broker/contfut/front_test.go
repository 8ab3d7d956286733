package contfut

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantra-lab/contango/internal/calendar"
	"github.com/quantra-lab/contango/internal/directory"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

type FrontContractTestSuite struct {
	suite.Suite
	engine *Engine
	dir    *directory.InMemoryDirectory
}

func TestFrontContractSuite(t *testing.T) {
	suite.Run(t, new(FrontContractTestSuite))
}

func (s *FrontContractTestSuite) SetupTest() {
	s.engine, s.dir = newTestEngine(date(2012, time.June, 1))

	// 2012 chain expiring on the 3rd Friday.
	addContract(s.dir, "ES", "ESH2", date(2012, time.March, 16))
	addContract(s.dir, "ES", "ESM2", date(2012, time.June, 15))
	addContract(s.dir, "ES", "ESN2", date(2012, time.July, 20))
	addContract(s.dir, "ES", "ESQ2", date(2012, time.August, 17))
	addContract(s.dir, "ES", "ESU2", date(2012, time.September, 21))

	s.engine.RegisterExpirationRule("ES", calendar.ExpirationRule{
		Kind:    calendar.DayRuleNthWeekday,
		Weekday: time.Friday,
		Nth:     3,
	})
}

func (s *FrontContractTestSuite) instrument(spec types.ContinuousFutureSpec) types.Instrument {
	return continuousInstrument("ES", spec)
}

func (s *FrontContractTestSuite) timeSpec() types.ContinuousFutureSpec {
	return types.ContinuousFutureSpec{
		Month:          1,
		RolloverType:   types.RolloverTypeTime,
		RolloverDays:   2,
		AdjustmentMode: types.AdjustmentModeNone,
	}
}

func (s *FrontContractTestSuite) TestCurrentMonthBeforeSwitchOver() {
	front, err := s.engine.FrontContractByTime(s.instrument(s.timeSpec()), date(2012, time.June, 12))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESM2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestRollsAtSwitchOver() {
	// Two business days before the June 15 expiration is June 13.
	front, err := s.engine.FrontContractByTime(s.instrument(s.timeSpec()), date(2012, time.June, 13))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESN2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestPastExpirationMovesToNextMonth() {
	front, err := s.engine.FrontContractByTime(s.instrument(s.timeSpec()), date(2012, time.June, 18))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESN2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestMonthMaskSkipsDisabledMonths() {
	spec := s.timeSpec()
	spec.MonthUsage = [12]bool{}
	spec.MonthUsage[2], spec.MonthUsage[5], spec.MonthUsage[8], spec.MonthUsage[11] = true, true, true, true

	// April and May are disabled; June is the first eligible month.
	front, err := s.engine.FrontContractByTime(s.instrument(spec), date(2012, time.April, 10))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESM2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestForwardMonthAdvancesPastTheFront() {
	spec := s.timeSpec()
	spec.Month = 2

	front, err := s.engine.FrontContractByTime(s.instrument(spec), date(2012, time.June, 12))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESN2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestQuarterlyForwardMonth() {
	spec := s.timeSpec()
	spec.Month = 2
	spec.MonthUsage = [12]bool{}
	spec.MonthUsage[2], spec.MonthUsage[5], spec.MonthUsage[8], spec.MonthUsage[11] = true, true, true, true

	front, err := s.engine.FrontContractByTime(s.instrument(spec), date(2012, time.April, 10))
	s.Require().NoError(err)
	s.Require().True(front.IsSome())
	s.Equal("ESU2", front.Unwrap().Symbol)
}

func (s *FrontContractTestSuite) TestMissingDirectoryRowResolvesToNone() {
	front, err := s.engine.FrontContractByTime(s.instrument(s.timeSpec()), date(2012, time.December, 12))
	s.Require().NoError(err)
	s.True(front.IsNone())
}

func (s *FrontContractTestSuite) TestNoRuleRegisteredFails() {
	instr := s.instrument(s.timeSpec())
	instr.UnderlyingSymbol = "NQ"

	_, err := s.engine.FrontContractByTime(instr, date(2012, time.June, 12))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeFrontContractFailed))
}

func (s *FrontContractTestSuite) TestVolumeRolloverNeedsBarData() {
	spec := s.timeSpec()
	spec.RolloverType = types.RolloverTypeVolume

	_, err := s.engine.FrontContractByTime(s.instrument(spec), date(2012, time.June, 12))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeFrontContractFailed))
}

func (s *FrontContractTestSuite) TestPlainInstrumentFails() {
	instr := s.instrument(s.timeSpec())
	instr.ContFut = optional.None[types.ContinuousFutureSpec]()

	_, err := s.engine.FrontContractByTime(instr, date(2012, time.June, 12))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeMissingContFutSpec))
}

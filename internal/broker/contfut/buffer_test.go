package contfut

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

type BufferPoolTestSuite struct {
	suite.Suite
	pool *BufferPool
}

func TestBufferPoolSuite(t *testing.T) {
	suite.Run(t, new(BufferPoolTestSuite))
}

func (s *BufferPoolTestSuite) SetupTest() {
	s.pool = NewBufferPool()
}

func (s *BufferPoolTestSuite) key() BufferKey {
	return BufferKey{InstrumentID: 7, Frequency: types.Frequency1d}
}

func (s *BufferPoolTestSuite) bar(day int, close float64) types.Bar {
	return types.Bar{
		Close:        decimal.NewFromFloat(close),
		Time:         time.Date(2012, 6, day, 0, 0, 0, 0, time.UTC),
		InstrumentID: 7,
		Frequency:    types.Frequency1d,
	}
}

func (s *BufferPoolTestSuite) TestAppendToUnretainedKeyIsNoOp() {
	s.pool.Append(s.key(), []types.Bar{s.bar(1, 100)})

	s.Nil(s.pool.Snapshot(s.key()))
	s.Equal(0, s.pool.Refs(s.key()))
}

func (s *BufferPoolTestSuite) TestRetainAppendSnapshot() {
	s.pool.Retain(s.key())
	s.pool.Append(s.key(), []types.Bar{s.bar(2, 101), s.bar(1, 100)})

	bars := s.pool.Snapshot(s.key())
	s.Require().Len(bars, 2)
	s.True(bars[0].Time.Before(bars[1].Time))
}

func (s *BufferPoolTestSuite) TestSnapshotIsACopy() {
	s.pool.Retain(s.key())
	s.pool.Append(s.key(), []types.Bar{s.bar(1, 100)})

	bars := s.pool.Snapshot(s.key())
	bars[0].Close = decimal.NewFromInt(999)

	again := s.pool.Snapshot(s.key())
	s.True(again[0].Close.Equal(decimal.NewFromInt(100)))
}

func (s *BufferPoolTestSuite) TestBufferSurvivesUntilLastRelease() {
	s.pool.Retain(s.key())
	s.pool.Retain(s.key())
	s.pool.Append(s.key(), []types.Bar{s.bar(1, 100)})
	s.Equal(2, s.pool.Refs(s.key()))

	s.Require().NoError(s.pool.Release(s.key()))
	s.Equal(1, s.pool.Refs(s.key()))
	s.Len(s.pool.Snapshot(s.key()), 1)

	s.Require().NoError(s.pool.Release(s.key()))
	s.Equal(0, s.pool.Refs(s.key()))
	s.Nil(s.pool.Snapshot(s.key()))
}

func (s *BufferPoolTestSuite) TestReleaseWithoutRetainFails() {
	err := s.pool.Release(s.key())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeBufferRefUnderflow))
}

func (s *BufferPoolTestSuite) TestReleaseAfterFreeFails() {
	s.pool.Retain(s.key())
	s.Require().NoError(s.pool.Release(s.key()))

	err := s.pool.Release(s.key())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeBufferRefUnderflow))
}

func (s *BufferPoolTestSuite) TestAppendDeduplicatesTimestamps() {
	s.pool.Retain(s.key())
	s.pool.Append(s.key(), []types.Bar{s.bar(1, 100)})
	s.pool.Append(s.key(), []types.Bar{s.bar(1, 200), s.bar(2, 101)})

	bars := s.pool.Snapshot(s.key())
	s.Require().Len(bars, 2)
	// Existing bars win over re-delivered ones.
	s.True(bars[0].Close.Equal(decimal.NewFromInt(100)))
}

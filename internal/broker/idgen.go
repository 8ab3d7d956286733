package broker

import "sync/atomic"

// IDGenerator issues process-wide-unique positive request ids. The atomic
// counter keeps ids collision-free under rapid concurrent issuance.
type IDGenerator struct {
	counter atomic.Int64
}

// NewIDGenerator creates a generator starting at 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next unique id.
func (g *IDGenerator) Next() int64 {
	return g.counter.Add(1)
}

package contfut

import (
	"sync"

	"github.com/quantra-lab/contango/internal/cache"
	"github.com/quantra-lab/contango/internal/types"
	"github.com/quantra-lab/contango/pkg/errors"
)

// BufferKey identifies one raw-bar buffer.
type BufferKey struct {
	InstrumentID int64
	Frequency    types.Frequency
}

type bufferEntry struct {
	bars []types.Bar
	refs int
}

// BufferPool holds the raw per-contract bar buffers accumulated while an
// aggregate's legs are in flight. Each buffer is reference-counted by the
// number of aggregates depending on it: a second concurrent request on the
// same contract must not see data vanish, and a buffer nobody depends on must
// not linger.
type BufferPool struct {
	mu      sync.Mutex
	entries map[BufferKey]*bufferEntry
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		entries: make(map[BufferKey]*bufferEntry),
	}
}

// Retain registers one more dependant on the buffer, creating it when absent.
func (p *BufferPool) Retain(key BufferKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		entry = &bufferEntry{}
		p.entries[key] = entry
	}

	entry.refs++
}

// Append merges bars into the buffer, keeping the series time-ordered with
// unique timestamps. Appending to an unretained key is a no-op.
func (p *BufferPool) Append(key BufferKey, bars []types.Bar) {
	if len(bars) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		return
	}

	entry.bars = cache.MergeBars(entry.bars, bars, false)
}

// Snapshot returns a copy of the buffer's bars. Readers hold no reference
// into the live buffer, so concurrent appends from another aggregate's legs
// cannot disturb a stitch in progress.
func (p *BufferPool) Snapshot(key BufferKey) []types.Bar {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok || len(entry.bars) == 0 {
		return nil
	}

	snapshot := make([]types.Bar, len(entry.bars))
	copy(snapshot, entry.bars)

	return snapshot
}

// Release drops one dependant. The buffer is freed exactly when the count
// reaches zero; the decrement and the conditional delete happen under a
// single acquisition.
func (p *BufferPool) Release(key BufferKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok || entry.refs <= 0 {
		return errors.Newf(errors.ErrCodeBufferRefUnderflow,
			"release of buffer (%d, %s) with no outstanding reference", key.InstrumentID, key.Frequency)
	}

	entry.refs--
	if entry.refs == 0 {
		delete(p.entries, key)
	}

	return nil
}

// Refs reports the buffer's current reference count.
func (p *BufferPool) Refs(key BufferKey) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[key]
	if !ok {
		return 0
	}

	return entry.refs
}

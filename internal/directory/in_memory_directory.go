package directory

import (
	"sync"

	"github.com/moznion/go-optional"

	"github.com/quantra-lab/contango/internal/types"
)

// InMemoryDirectory is a mutex-guarded in-memory instrument store.
type InMemoryDirectory struct {
	mu          sync.RWMutex
	instruments []types.Instrument
	nextID      int64
}

// NewInMemoryDirectory creates an empty directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		nextID: 1,
	}
}

// Add stores an instrument, assigning an id when it has none, and returns the
// stored instrument.
func (d *InMemoryDirectory) Add(instr types.Instrument) types.Instrument {
	d.mu.Lock()
	defer d.mu.Unlock()

	if instr.ID.IsNone() {
		instr.ID = optional.Some(d.nextID)
		d.nextID++
	}

	d.instruments = append(d.instruments, instr)

	return instr
}

// Find implements Directory.
func (d *InMemoryDirectory) Find(filter Filter) []types.Instrument {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []types.Instrument

	for _, instr := range d.instruments {
		if filter.Matches(instr) {
			result = append(result, instr)
		}
	}

	return result
}

package search

import (
	"fmt"

	"github.com/calvinalkan/tnp1/internal/collatz"
)

// Cache is the shared step-count buffer, one uint16 per domain value in
// [0, Len()).
//
// Cells are written once, by the worker holding the commit turn, and read
// by any worker only below a read limit it loaded after that commit. No
// cell is ever read while a write to it is pending.
type Cache struct {
	cells []uint16
	arena *arena
}

// NewCache allocates a cache of size cells and seeds the two base cases.
func NewCache(size uint64) (*Cache, error) {
	if size <= FirstValue {
		return nil, fmt.Errorf("%w: cache size must exceed %d, got %d", ErrInvalidParams, FirstValue, size)
	}

	a, err := allocArena(size)
	if err != nil {
		return nil, fmt.Errorf("%w (%d cells): %w", ErrAlloc, size, err)
	}

	c := &Cache{cells: a.cells, arena: a}
	c.cells[0] = collatz.SentinelMax
	c.cells[1] = 0

	return c, nil
}

// Len returns the cache capacity.
func (c *Cache) Len() uint64 {
	return uint64(len(c.cells))
}

// Read returns the finalized count for n. Callers must only pass n below a
// read limit they have observed.
func (c *Cache) Read(n uint64) uint16 {
	return c.cells[n]
}

// Commit copies local into the cache at start, clipped to capacity, and
// returns the number of cells written. A chunk that lies entirely past the
// end writes nothing.
func (c *Cache) Commit(start uint64, local []uint16) int {
	size := c.Len()
	if start >= size {
		return 0
	}

	return copy(c.cells[start:], local)
}

// Snapshot copies the cells in [lo, hi) for inspection after a run.
func (c *Cache) Snapshot(lo, hi uint64) []uint16 {
	hi = min(hi, c.Len())
	if lo >= hi {
		return nil
	}

	out := make([]uint16, hi-lo)
	copy(out, c.cells[lo:hi])

	return out
}

// Close releases the buffer. The cache must not be used afterwards.
func (c *Cache) Close() error {
	if c.arena == nil {
		return nil
	}

	err := c.arena.release()
	c.arena = nil
	c.cells = nil

	return err
}

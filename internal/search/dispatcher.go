package search

import (
	"runtime"
	"sync/atomic"
)

const cacheLineSize = 64

// Dispatcher hands out chunks and orders their commits.
//
// Layout of the domain at any instant:
//
//	[ final, read-only | ReadLimit | claimed, in progress | WriteBase | unclaimed ]
//
// Both counters only grow, always by exactly one chunk size, and
// ReadLimit <= WriteBase holds whenever they are observed together.
type Dispatcher struct {
	writeBase atomic.Uint64
	_         [cacheLineSize - 8]byte
	readLimit atomic.Uint64
	_         [cacheLineSize - 8]byte

	chunkSize uint64
}

// NewDispatcher returns a dispatcher whose first chunk starts at base.
func NewDispatcher(base, chunkSize uint64) *Dispatcher {
	d := &Dispatcher{chunkSize: chunkSize}
	d.writeBase.Store(base)
	d.readLimit.Store(base)

	return d
}

// ChunkSize returns the size of every chunk.
func (d *Dispatcher) ChunkSize() uint64 {
	return d.chunkSize
}

// Claim reserves the next chunk and returns its start. Never blocks.
func (d *Dispatcher) Claim() uint64 {
	return d.writeBase.Add(d.chunkSize) - d.chunkSize
}

// AwaitTurn spins until every chunk before start has committed.
//
// Only the worker owning the chunk at start can see the match, since
// ReadLimit moves in whole chunks and only that worker moves it further.
func (d *Dispatcher) AwaitTurn(start uint64) {
	for d.readLimit.Load() != start {
		runtime.Gosched()
	}
}

// Advance publishes the chunk at start. Every cache write made before the
// call is visible to any goroutine that later loads the new read limit.
func (d *Dispatcher) Advance(start uint64) {
	d.readLimit.Store(start + d.chunkSize)
}

// ReadLimit returns the boundary below which the cache is final.
func (d *Dispatcher) ReadLimit() uint64 {
	return d.readLimit.Load()
}

// WriteBase returns the start of the next unclaimed chunk.
func (d *Dispatcher) WriteBase() uint64 {
	return d.writeBase.Load()
}

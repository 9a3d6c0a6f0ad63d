package search

import (
	"github.com/calvinalkan/tnp1/internal/collatz"
)

// chunkResult is what a worker knows about its chunk before its turn.
type chunkResult struct {
	best    Max
	wrapped uint64
}

type worker struct {
	id    int
	st    *state
	local []uint16
}

func newWorker(id int, st *state) *worker {
	return &worker{
		id:    id,
		st:    st,
		local: make([]uint16, st.dispatcher.ChunkSize()),
	}
}

// run loops claim, compute, await turn, commit until the run flag clears.
// The flag is only checked here, so a claimed chunk is always committed.
func (w *worker) run() {
	d := w.st.dispatcher

	for w.st.running.Load() {
		start := d.Claim()
		limit := min(d.ReadLimit(), w.st.cache.Len())

		w.st.observer.ChunkClaimed(w.id, start)

		res := computeChunk(w.st.cache, start, limit, w.local)

		d.AwaitTurn(start)
		w.commit(start, res)
	}
}

// computeChunk fills local with the counts for [start, start+len(local))
// and returns the chunk maximum. It only reads cache cells below limit and
// writes nothing shared.
func computeChunk(cache *Cache, start, limit uint64, local []uint16) chunkResult {
	var res chunkResult

	res.best.N = start

	for offset := range local {
		n := start + uint64(offset)

		reached, steps := collatz.Descend(n, limit)

		count, wrapped := collatz.Narrow(uint64(cache.Read(reached)) + steps)
		if wrapped {
			res.wrapped++
		}

		local[offset] = count

		if count > res.best.Iterations {
			res.best = Max{N: n, Iterations: count}
		}
	}

	return res
}

// commit runs while holding the turn. Everything it touches besides the
// dispatcher is serialized by the turnstile.
func (w *worker) commit(start uint64, res chunkResult) {
	st := w.st

	written := st.cache.Commit(start, w.local)
	raised := st.tracker.Offer(res.best)
	best := st.tracker.Best()

	st.chunks++

	if res.wrapped > 0 {
		if st.wrapped == 0 {
			st.log.Warn().
				Uint64("chunk", start).
				Uint64("values", res.wrapped).
				Msg("step count exceeded 16 bits and wrapped, results are untrusted")
		}

		st.wrapped += res.wrapped
	}

	end := start + uint64(len(w.local))

	if st.reason == StopNone {
		switch {
		case uint64(best.Iterations) >= st.stopAfter:
			st.stop(StopThreshold)
		case end >= st.cache.Len():
			st.stop(StopDomainExhausted)
		}
	}

	st.log.Debug().
		Int("worker", w.id).
		Uint64("chunk", start).
		Int("written", written).
		Uint64("local_n", res.best.N).
		Uint16("local_iterations", res.best.Iterations).
		Bool("raised", raised).
		Msg("chunk committed")

	st.observer.ChunkCommitted(Commit{
		Worker:  w.id,
		Start:   start,
		Written: written,
		Local:   res.best,
		Global:  best,
	})

	st.dispatcher.Advance(start)
}

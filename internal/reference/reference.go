// Package reference is a plain single-threaded Collatz search used to check
// the concurrent one. It shares no cache and no arithmetic shortcuts with
// it: every trajectory is followed one step at a time down to 1, switching
// to big integers before a value could overflow.
package reference

import (
	"math"
	"math/big"

	"github.com/calvinalkan/tnp1/internal/collatz"
	"github.com/calvinalkan/tnp1/internal/search"
)

const fastLimit = (math.MaxUint64 - 1) / 3

var (
	bigOne   = big.NewInt(1)
	bigThree = big.NewInt(3)
)

// Count returns the number of steps that take n to 1. Count(0) and
// Count(1) are 0.
func Count(n uint64) uint64 {
	var steps uint64

	for n > 1 {
		if n&1 == 0 {
			n >>= 1
		} else {
			if n > fastLimit {
				return steps + countBig(new(big.Int).SetUint64(n))
			}

			n = 3*n + 1
		}

		steps++
	}

	return steps
}

func countBig(n *big.Int) uint64 {
	var steps uint64

	for n.Cmp(bigOne) > 0 {
		if n.Bit(0) == 0 {
			n.Rsh(n, 1)
		} else {
			n.Mul(n, bigThree)
			n.Add(n, bigOne)
		}

		steps++
	}

	return steps
}

// Cells returns what a fully finalized cache of size cells must hold.
func Cells(size uint64) []uint16 {
	out := make([]uint16, size)
	if size > 0 {
		out[0] = collatz.SentinelMax
	}

	for n := uint64(2); n < size; n++ {
		out[n], _ = collatz.Narrow(Count(n))
	}

	return out
}

// Result is the outcome of a reference search.
type Result struct {
	Max search.Max
	// Chunks is the least number of chunks that had to be committed.
	Chunks  uint64
	Wrapped uint64
	Reason  search.StopReason
}

// Search walks the chunks of p in order, the way the concurrent search
// commits them, and stops after the first chunk that reaches the threshold
// or the end of the cache.
func Search(p search.Params) Result {
	var res Result

	for start := uint64(search.FirstValue); ; start += p.ChunkSize {
		local := search.Max{N: start}

		for n := start; n < start+p.ChunkSize; n++ {
			count, wrapped := collatz.Narrow(Count(n))
			if wrapped {
				res.Wrapped++
			}

			if count > local.Iterations {
				local = search.Max{N: n, Iterations: count}
			}
		}

		if local.Iterations > res.Max.Iterations {
			res.Max = local
		}

		res.Chunks++

		if uint64(res.Max.Iterations) >= p.StopAfter {
			res.Reason = search.StopThreshold

			return res
		}

		if start+p.ChunkSize >= p.CacheSize {
			res.Reason = search.StopDomainExhausted

			return res
		}
	}
}

// Package collatz holds the step arithmetic shared by the search and its
// reference implementation.
//
// Step counts follow the usual convention (3n+1 and n/2 are one step each),
// but an odd value is always followed by an even one, so both are taken at
// once: odd n costs two steps and moves to (3n+1)/2.
package collatz

// Width is the bit width of a stored step count.
const Width = 16

// SentinelMax marks cache slot 0. Zero never occurs in a trajectory, so the
// value is a placeholder and never a real step count.
const SentinelMax uint16 = 1<<Width - 1

// Step applies one (possibly doubled) step to n and returns the next value
// and the number of steps taken.
func Step(n uint64) (uint64, uint64) {
	if n&1 == 1 {
		return (3*n + 1) >> 1, 2
	}

	return n >> 1, 1
}

// Descend steps n at least once and until it drops below limit. It returns
// the value reached and the steps taken. limit must be at least 2.
func Descend(n, limit uint64) (uint64, uint64) {
	var steps uint64

	for {
		next, taken := Step(n)
		n = next
		steps += taken

		if n < limit {
			return n, steps
		}
	}
}

// Narrow reduces v to the stored width. Values that do not fit wrap around
// modulo 2^Width; wrapped reports whether that happened.
func Narrow(v uint64) (count uint16, wrapped bool) {
	return uint16(v & (1<<Width - 1)), v>>Width != 0
}

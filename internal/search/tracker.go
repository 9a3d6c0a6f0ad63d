package search

// Max is a domain value and its step count.
type Max struct {
	N          uint64 `json:"n"`
	Iterations uint16 `json:"iterations"`
}

// Tracker holds the best pair seen so far.
//
// It has no lock. Only the worker holding the commit turn touches it, and
// the turnstile serializes those workers; the supervisor reads it after
// the pool has joined.
type Tracker struct {
	best   Max
	frozen bool
}

// Offer replaces the best pair when candidate has strictly more iterations.
// It reports whether it did. A frozen tracker ignores every offer.
func (t *Tracker) Offer(candidate Max) bool {
	if t.frozen || candidate.Iterations <= t.best.Iterations {
		return false
	}

	t.best = candidate

	return true
}

// Freeze stops further updates.
func (t *Tracker) Freeze() {
	t.frozen = true
}

// Best returns the current best pair.
func (t *Tracker) Best() Max {
	return t.best
}

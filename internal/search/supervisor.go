// Package search finds the value with the longest Collatz trajectory in a
// bounded domain using a pool of workers that share one growing cache.
//
// Workers claim fixed-size chunks from a [Dispatcher], compute them out of
// order against the finalized prefix of the [Cache], and commit strictly in
// chunk order through a turnstile on the dispatcher's read limit.
package search

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var errAlreadyRan = errors.New("supervisor already ran")

// StopReason says why a run ended.
type StopReason string

// Stop reasons.
const (
	StopNone            StopReason = ""
	StopThreshold       StopReason = "threshold"
	StopDomainExhausted StopReason = "domain_exhausted"
)

// Commit describes one committed chunk.
type Commit struct {
	Worker int
	Start  uint64
	// Written is the number of cells copied into the cache, less than the
	// chunk size only for a chunk that crosses the end of the cache.
	Written int
	Local   Max
	Global  Max
}

// Observer receives run events. ChunkClaimed is called concurrently from
// every worker. ChunkCommitted is called by the worker holding the commit
// turn, so those calls never overlap and arrive in chunk order.
type Observer interface {
	ChunkClaimed(worker int, start uint64)
	ChunkCommitted(c Commit)
}

type nopObserver struct{}

func (nopObserver) ChunkClaimed(int, uint64) {}
func (nopObserver) ChunkCommitted(Commit)    {}

// Options configures a [Supervisor].
type Options struct {
	Params Params

	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger

	// Observer is optional.
	Observer Observer
}

// Result is the outcome of a run.
type Result struct {
	Max Max `json:"max"`
	// Chunks is the number of chunks committed, including those finished
	// after the stop was signalled.
	Chunks uint64 `json:"chunks"`
	// ReadLimit is the final read limit; it equals the final write base.
	ReadLimit uint64 `json:"read_limit"`
	// Wrapped counts values whose step count did not fit in 16 bits.
	Wrapped    uint64        `json:"wrapped"`
	StopReason StopReason    `json:"stop_reason"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Trusted reports whether no count wrapped during the run.
func (r Result) Trusted() bool {
	return r.Wrapped == 0
}

// state is everything the workers share. It is built once by the
// supervisor and handed to every worker by pointer.
type state struct {
	cache      *Cache
	dispatcher *Dispatcher
	running    atomic.Bool

	// Only touched while holding the commit turn.
	tracker Tracker
	chunks  uint64
	wrapped uint64
	reason  StopReason

	stopAfter uint64
	log       *zerolog.Logger
	observer  Observer
}

// stop clears the run flag and freezes the maximum, so commits of chunks
// still in flight cannot change the reported result.
func (st *state) stop(reason StopReason) {
	st.reason = reason
	st.tracker.Freeze()
	st.running.Store(false)

	st.log.Debug().
		Str("reason", string(reason)).
		Uint64("n", st.tracker.Best().N).
		Uint16("iterations", st.tracker.Best().Iterations).
		Msg("stop signalled")
}

// Supervisor owns the cache and the shared state for one run.
type Supervisor struct {
	params Params
	st     *state
	ran    atomic.Bool
}

// New validates the params, allocates the cache and seeds it. Allocation
// failure is returned as [ErrAlloc].
func New(opts Options) (*Supervisor, error) {
	err := opts.Params.Validate()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	cache, err := NewCache(opts.Params.CacheSize)
	if err != nil {
		return nil, err
	}

	st := &state{
		cache:      cache,
		dispatcher: NewDispatcher(FirstValue, opts.Params.ChunkSize),
		stopAfter:  opts.Params.StopAfter,
		log:        logger,
		observer:   observer,
	}
	st.running.Store(true)

	return &Supervisor{params: opts.Params, st: st}, nil
}

// Run spawns the worker pool, waits for it and returns the result. It can
// be called once.
func (s *Supervisor) Run() (Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Result{}, errAlreadyRan
	}

	began := time.Now()

	s.st.log.Debug().
		Int("workers", s.params.Workers).
		Uint64("chunk_size", s.params.ChunkSize).
		Uint64("cache_size", s.params.CacheSize).
		Uint64("stop_after", s.params.StopAfter).
		Msg("search started")

	var group errgroup.Group

	for id := range s.params.Workers {
		w := newWorker(id, s.st)

		group.Go(func() error {
			w.run()

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return Result{}, fmt.Errorf("worker: %w", err)
	}

	res := Result{
		Max:        s.st.tracker.Best(),
		Chunks:     s.st.chunks,
		ReadLimit:  s.st.dispatcher.ReadLimit(),
		Wrapped:    s.st.wrapped,
		StopReason: s.st.reason,
		Elapsed:    time.Since(began),
	}

	s.st.log.Debug().
		Uint64("n", res.Max.N).
		Uint16("iterations", res.Max.Iterations).
		Uint64("chunks", res.Chunks).
		Dur("elapsed", res.Elapsed).
		Msg("search finished")

	return res, nil
}

// Cache returns the shared cache. Reading it is only safe once Run returned.
func (s *Supervisor) Cache() *Cache {
	return s.st.cache
}

// Dispatcher returns the shared dispatcher.
func (s *Supervisor) Dispatcher() *Dispatcher {
	return s.st.dispatcher
}

// Close releases the cache.
func (s *Supervisor) Close() error {
	return s.st.cache.Close()
}

// Run allocates, runs and releases a search in one call. Elapsed covers the
// allocation as well.
func Run(opts Options) (Result, error) {
	began := time.Now()

	sup, err := New(opts)
	if err != nil {
		return Result{}, err
	}

	res, runErr := sup.Run()
	closeErr := sup.Close()

	err = errors.Join(runErr, closeErr)
	if err != nil {
		return Result{}, err
	}

	res.Elapsed = time.Since(began)

	return res, nil
}

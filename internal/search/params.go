package search

import (
	"fmt"
	"sort"
)

// Build-time tunables of the default profile.
const (
	StopAfter   = 1000
	WorkerCount = 16
	ChunkSize   = 64 * 1024
	CacheSize   = 4*(1024*1024*1024)/2 - 1
)

// FirstValue is where chunk claiming starts. Slots 0 and 1 are seeded by the
// supervisor before any worker runs.
const FirstValue = 2

// maxCacheSize keeps 3n+1 for every visited value far away from uint64
// overflow.
const maxCacheSize = 1 << 32

// Params are the tunables of one search.
type Params struct {
	// StopAfter ends the run once the global maximum reaches it.
	StopAfter uint64
	Workers   int
	ChunkSize uint64
	// CacheSize is the number of cached domain values, [0, CacheSize).
	CacheSize uint64
}

// Validate reports whether p describes a runnable search.
func (p Params) Validate() error {
	if p.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidParams, p.Workers)
	}

	if p.ChunkSize == 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidParams)
	}

	if p.CacheSize <= FirstValue {
		return fmt.Errorf("%w: cache size must exceed %d, got %d", ErrInvalidParams, FirstValue, p.CacheSize)
	}

	if p.CacheSize > maxCacheSize {
		return fmt.Errorf("%w: cache size %d exceeds %d", ErrInvalidParams, p.CacheSize, uint64(maxCacheSize))
	}

	return nil
}

var profiles = map[string]Params{
	"default": {
		StopAfter: StopAfter,
		Workers:   WorkerCount,
		ChunkSize: ChunkSize,
		CacheSize: CacheSize,
	},
	"medium": {
		StopAfter: 500,
		Workers:   8,
		ChunkSize: 4 * 1024,
		CacheSize: 16 * 1024 * 1024,
	},
	"small": {
		StopAfter: 20,
		Workers:   4,
		ChunkSize: 16,
		CacheSize: 1024,
	},
}

// DefaultParams returns the profile cmd/tnp1 runs.
func DefaultParams() Params {
	return profiles["default"]
}

// Profile returns the named build-time profile.
func Profile(name string) (Params, error) {
	p, ok := profiles[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	return p, nil
}

// ProfileNames lists the build-time profiles in name order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

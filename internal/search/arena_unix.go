//go:build unix

package search

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// arena is an anonymous private mapping. Pages are zero-filled on first
// touch, so untouched parts of a large cache cost nothing.
type arena struct {
	cells []uint16
	mem   []byte
}

func allocArena(size uint64) (*arena, error) {
	if size > math.MaxInt/2 {
		return nil, fmt.Errorf("size %d too large for this platform", size)
	}

	mem, err := unix.Mmap(-1, 0, int(size*2), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	cells := unsafe.Slice((*uint16)(unsafe.Pointer(unsafe.SliceData(mem))), size)

	return &arena{cells: cells, mem: mem}, nil
}

func (a *arena) release() error {
	a.cells = nil

	err := unix.Munmap(a.mem)
	if err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	a.mem = nil

	return nil
}

//go:build !unix

package search

import "fmt"

type arena struct {
	cells []uint16
}

func allocArena(size uint64) (a *arena, err error) {
	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("make: %v", r)
		}
	}()

	return &arena{cells: make([]uint16, size)}, nil
}

func (a *arena) release() error {
	a.cells = nil

	return nil
}

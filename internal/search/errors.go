package search

import "errors"

// Error variables for search setup.
var (
	ErrInvalidParams  = errors.New("invalid search params")
	ErrUnknownProfile = errors.New("unknown profile")
	ErrAlloc          = errors.New("cannot allocate cache")
)

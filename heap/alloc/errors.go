package alloc

import "errors"

var (
	// ErrOutOfMemory indicates no free block fits and the arena could not be
	// extended. It wraps the provider's error when growth failed.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadConfig indicates an invalid Config field.
	ErrBadConfig = errors.New("alloc: bad config")
)

package arena

import "errors"

var (
	// ErrExhausted indicates the arena cannot grow by the requested amount.
	ErrExhausted = errors.New("arena: exhausted")

	// ErrBadSize indicates a negative or otherwise invalid extension size.
	ErrBadSize = errors.New("arena: bad size")

	// ErrClosed indicates use of a provider after Close.
	ErrClosed = errors.New("arena: closed")

	// ErrUnsupported indicates the provider is not available on this platform.
	ErrUnsupported = errors.New("arena: unsupported on this platform")
)

// Provider is the growable memory range consumed by the allocator.
type Provider interface {
	// Extend grows the arena by exactly n bytes and returns the offset of the
	// first new byte (the previous High). The new bytes read as zero.
	// Returns an error wrapping ErrExhausted when the arena cannot grow.
	Extend(n int) (int, error)

	// Low returns the offset of the first arena byte. Fixed for the
	// provider's lifetime.
	Low() int

	// High returns the offset one past the last valid byte.
	High() int

	// Bytes returns the arena contents [Low, High). The slice is invalidated
	// by the next Extend or Reset.
	Bytes() []byte

	// Reset returns the arena to empty, invalidating all prior blocks.
	Reset() error
}

// DefaultLimit is the arena size limit used when none is given (the classic
// 20 MB trace-driver heap, rounded up to a power of two).
const DefaultLimit = 32 << 20

package trace

import "errors"

var (
	// ErrSyntax indicates a malformed trace file.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrMisaligned indicates a payload not aligned to format.Alignment.
	ErrMisaligned = errors.New("trace: misaligned payload")

	// ErrOutOfArena indicates a payload extending outside [Low, High).
	ErrOutOfArena = errors.New("trace: payload outside arena")

	// ErrOverlap indicates a payload overlapping a live payload.
	ErrOverlap = errors.New("trace: payloads overlap")

	// ErrCorrupted indicates payload bytes changed while the block was live.
	ErrCorrupted = errors.New("trace: payload contents not preserved")

	// ErrBadOp indicates an operation on an id in the wrong state, such as a
	// write larger than the live payload.
	ErrBadOp = errors.New("trace: invalid operation")
)

// Package format houses the low-level block layout shared by the allocator,
// the invariant checker, and the trace validator. Everything here operates on
// raw arena bytes and offsets; nothing allocates.
package format

// Block layout (little-endian, offsets relative to the block start):
//
//	Offset  Size  Description
//	0x00    8     Total block size in bytes, header and footer included.
//	0x08    8     Next free block start (NoLink when last or allocated).
//	0x10    8     Previous free block start (NoLink when first or allocated).
//	0x18    8     State: StateAllocated or StateFree.
//	0x20    ...   Payload.
//	size-8  8     Footer: copy of the block size.
const (
	// Alignment is the alignment unit for block sizes and payload pointers.
	Alignment = 8

	// AlignmentMask is Alignment-1, used for rounding.
	AlignmentMask = Alignment - 1

	// HeaderSize is the number of bytes before the payload.
	HeaderSize = 0x20

	// FooterSize is the number of bytes after the payload.
	FooterSize = 8

	// Overhead is the per-block bookkeeping cost.
	Overhead = HeaderSize + FooterSize

	// MinViableBlock is the smallest block that can carry a header, a footer
	// and one alignment unit of payload.
	MinViableBlock = Overhead + Alignment

	// SizeOffset is the header field holding the block size.
	SizeOffset = 0x00

	// NextOffset is the header field holding the next free link.
	NextOffset = 0x08

	// PrevOffset is the header field holding the previous free link.
	PrevOffset = 0x10

	// StateOffset is the header field holding the block state.
	StateOffset = 0x18
)

const (
	// StateAllocated marks a block owned by the caller.
	StateAllocated uint64 = 0

	// StateFree marks a block owned by the bin table.
	StateFree uint64 = 1

	// NoLink terminates a free list.
	NoLink uint64 = 1<<64 - 1
)

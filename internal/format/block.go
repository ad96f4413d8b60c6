package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Block is a decoded view of one block header plus its footer.
type Block struct {
	Off    int    // Block start offset in the arena
	Size   int    // Total size including header and footer
	Free   bool   // True when the state field is StateFree
	State  uint64 // Raw state field
	Footer int    // Size recorded in the footer
	Next   uint64 // Next free link (meaningful only when Free)
	Prev   uint64 // Previous free link (meaningful only when Free)
}

// End returns the offset one past the block.
func (b Block) End() int { return b.Off + b.Size }

// ReadBlock decodes the block starting at off. It validates only that the
// header and the footer lie inside b; semantic checks are the caller's job.
func ReadBlock(b []byte, off int) (Block, error) {
	if !buf.Within(off, HeaderSize, 0, len(b)) {
		return Block{}, fmt.Errorf("block at %d: header: %w", off, ErrTruncated)
	}
	size := ReadSize(b, off+SizeOffset)
	if size < FooterSize || !buf.Within(off, size, 0, len(b)) {
		return Block{}, fmt.Errorf("block at %d: size %d: %w", off, size, ErrTruncated)
	}
	state := ReadU64(b, off+StateOffset)
	return Block{
		Off:    off,
		Size:   size,
		Free:   state == StateFree,
		State:  state,
		Footer: ReadSize(b, off+size-FooterSize),
		Next:   ReadU64(b, off+NextOffset),
		Prev:   ReadU64(b, off+PrevOffset),
	}, nil
}

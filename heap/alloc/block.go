package alloc

import "github.com/joshuapare/heapkit/internal/format"

// noBlock is the in-memory form of format.NoLink.
const noBlock = -1

// Block accessors. Offsets are block starts, not payload pointers. Every write
// is reported to the dirty tracker.

func (a *Allocator) sizeOf(off int) int {
	return format.ReadSize(a.buf, off+format.SizeOffset)
}

func (a *Allocator) isFree(off int) bool {
	return format.ReadU64(a.buf, off+format.StateOffset) == format.StateFree
}

func (a *Allocator) next(off int) int { return fromLink(format.ReadU64(a.buf, off+format.NextOffset)) }
func (a *Allocator) prev(off int) int { return fromLink(format.ReadU64(a.buf, off+format.PrevOffset)) }

func (a *Allocator) setNext(off, n int) {
	format.PutU64(a.buf, off+format.NextOffset, toLink(n))
	a.markDirty(off+format.NextOffset, 8)
}

func (a *Allocator) setPrev(off, p int) {
	format.PutU64(a.buf, off+format.PrevOffset, toLink(p))
	a.markDirty(off+format.PrevOffset, 8)
}

// writeBlock writes a complete header (links cleared) and the footer.
func (a *Allocator) writeBlock(off, size int, state uint64) {
	format.PutSize(a.buf, off+format.SizeOffset, size)
	format.PutU64(a.buf, off+format.NextOffset, format.NoLink)
	format.PutU64(a.buf, off+format.PrevOffset, format.NoLink)
	format.PutU64(a.buf, off+format.StateOffset, state)
	format.PutSize(a.buf, off+size-format.FooterSize, size)
	a.markDirty(off, format.HeaderSize)
	a.markDirty(off+size-format.FooterSize, format.FooterSize)
}

func (a *Allocator) setState(off int, state uint64) {
	format.PutU64(a.buf, off+format.StateOffset, state)
	a.markDirty(off+format.StateOffset, 8)
}

// leftNeighbor returns the start of the block ending at off, read through its
// footer. The caller guarantees off > Low.
func (a *Allocator) leftNeighbor(off int) int {
	return off - format.ReadSize(a.buf, off-format.FooterSize)
}

func (a *Allocator) markDirty(off, length int) {
	if a.dt != nil {
		a.dt.Add(off, length)
	}
}

func toLink(off int) uint64 {
	if off == noBlock {
		return format.NoLink
	}
	return uint64(off)
}

func fromLink(v uint64) int {
	if v == format.NoLink {
		return noBlock
	}
	return int(v)
}

// blockOf returns the block start of payload p.
func blockOf(p Ptr) int { return p - format.HeaderSize }

// payloadOf returns the payload pointer of the block at off.
func payloadOf(off int) Ptr { return off + format.HeaderSize }

const (
	stateAllocated = format.StateAllocated
	stateFree      = format.StateFree
)

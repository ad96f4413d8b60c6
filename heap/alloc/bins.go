package alloc

import "math/bits"

// ceilLog2 returns the exact ceiling of log2(n) for n >= 1. Powers of two map
// to their own exponent.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(uint64(n - 1))
}

// binIndex returns the bin for a block of the given size.
func (a *Allocator) binIndex(size int) int {
	return min(ceilLog2(size), len(a.heads)-1)
}

// binBounds returns the exclusive lower and inclusive upper size bound of
// bin i. The last bin has no upper bound (hi == -1).
func binBounds(i, numBins int) (lo, hi int) {
	if i > 0 {
		lo = 1 << (i - 1)
	}
	if i == numBins-1 {
		return lo, -1
	}
	return lo, 1 << i
}

// insert links the free block at off into its bin, keeping the bin sorted by
// ascending size. A block goes in front of existing blocks of equal size.
func (a *Allocator) insert(off, size int) {
	b := a.binIndex(size)

	prev := noBlock
	cur := a.heads[b]
	for cur != noBlock && a.sizeOf(cur) < size {
		prev = cur
		cur = a.next(cur)
	}

	a.setNext(off, cur)
	a.setPrev(off, prev)
	if cur != noBlock {
		a.setPrev(cur, off)
	}
	if prev == noBlock {
		a.heads[b] = off
	} else {
		a.setNext(prev, off)
	}
	a.setState(off, stateFree)
	a.counts[b]++
	a.freeBlocks++
}

// remove unlinks the free block at off from its bin. The block's size must
// still be the size it was inserted with.
func (a *Allocator) remove(off int) {
	b := a.binIndex(a.sizeOf(off))
	prev, next := a.prev(off), a.next(off)

	if prev == noBlock {
		a.heads[b] = next
	} else {
		a.setNext(prev, next)
	}
	if next != noBlock {
		a.setPrev(next, prev)
	}
	a.setNext(off, noBlock)
	a.setPrev(off, noBlock)
	a.setState(off, stateAllocated)
	a.counts[b]--
	a.freeBlocks--
}

// findFit returns the best block for required bytes, or noBlock. The
// required size's own bin is scanned for the first block that is large
// enough; otherwise the head (smallest) of the first non-empty larger bin is
// taken, unless it exceeds required by more than MaxOversize.
func (a *Allocator) findFit(required int) int {
	b := a.binIndex(required)
	for cur := a.heads[b]; cur != noBlock; cur = a.next(cur) {
		if a.sizeOf(cur) >= required {
			return cur
		}
	}

	for i := b + 1; i < len(a.heads); i++ {
		head := a.heads[i]
		if head == noBlock {
			continue
		}
		if a.cfg.MaxOversize > 0 && a.sizeOf(head)-required > a.cfg.MaxOversize {
			return noBlock
		}
		return head
	}
	return noBlock
}

package alloc

// Free returns p's block to the bins, merging it with free physical
// neighbors first. Free(Nil) is a no-op. Freeing anything other than a live
// pointer from this allocator is undefined.
func (a *Allocator) Free(p Ptr) {
	if p == Nil {
		return
	}
	if a.cfg.Paranoid {
		a.mustCheck("before free")
		defer a.mustCheck("after free")
	}
	a.free(p)
}

func (a *Allocator) free(p Ptr) {
	a.stats.FreeCalls++
	a.release(blockOf(p))
}

// release coalesces the allocated block at off with its right neighbor, then
// its left neighbor, and inserts the result into exactly one bin.
func (a *Allocator) release(off int) {
	size := a.sizeOf(off)

	if right := off + size; right < a.p.High() && a.isFree(right) {
		a.remove(right)
		size += a.sizeOf(right)
		a.stats.CoalesceForward++
	}

	if off > a.p.Low() {
		if left := a.leftNeighbor(off); a.isFree(left) {
			a.remove(left)
			size += a.sizeOf(left)
			off = left
			a.stats.CoalesceBackward++
		}
	}

	a.writeBlock(off, size, stateAllocated)
	a.insert(off, size)
}

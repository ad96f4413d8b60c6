package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Realloc resizes p to at least n usable bytes, preserving the first
// min(UsableSize(p), n) bytes.
//
// Realloc(Nil, n) is Alloc(n). Realloc(p, 0) frees p and returns Nil. In
// order, it tries: shrinking in place by splitting, returning p unchanged,
// widening p in place when it is the last block of the arena, and finally
// moving to a new block. On failure it returns Nil and an error wrapping
// ErrOutOfMemory; p is still live and unchanged.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, error) {
	if a.cfg.Paranoid {
		a.mustCheck("before realloc")
		defer a.mustCheck("after realloc")
	}

	if p == Nil {
		return a.alloc(n)
	}
	if n == 0 {
		a.free(p)
		return Nil, nil
	}
	a.stats.ReallocCalls++

	required, err := a.required(n)
	if err != nil {
		return Nil, err
	}

	off := blockOf(p)
	size := a.sizeOf(off)

	if size >= required {
		if a.shouldSplit(size - required) {
			a.split(off, required)
			a.stats.ReallocShrink++
			return p, nil
		}
		a.stats.ReallocNoop++
		return p, nil
	}

	if a.cfg.GrowInPlace && off+size == a.p.High() {
		if _, err := a.grow(required - size); err == nil {
			a.writeBlock(off, required, stateAllocated)
			a.stats.ReallocGrowTail++
			return p, nil
		}
		if logAlloc {
			logger.Debug("alloc: tail grow failed, moving", "ptr", p, "need", required)
		}
	}

	np, err := a.alloc(n)
	if err != nil {
		return Nil, err
	}
	copy(a.buf[np:np+min(format.PayloadSize(size), n)], a.buf[p:])
	a.free(p)
	a.stats.ReallocCopy++
	return np, nil
}

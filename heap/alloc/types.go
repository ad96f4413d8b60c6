package alloc

import "github.com/joshuapare/heapkit/heap/dirty"

// Ptr is a payload offset into the arena: block start + format.HeaderSize.
type Ptr = int

// Nil is the null payload. The first block starts at the arena's low end, so
// no payload is ever at offset 0.
const Nil Ptr = 0

// DirtyTracker is a type alias for the canonical interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Stats holds allocator counters. All fields are cumulative since the last Init.
type Stats struct {
	GrowCalls        int   // Arena extensions for new blocks
	GrowBytes        int64 // Bytes added by those extensions
	AllocCalls       int   // Alloc calls, including those from Realloc
	AllocFastPath    int   // Allocations served from a bin
	AllocSlowPath    int   // Allocations that extended the arena
	FreeCalls        int   // Free calls with a non-nil pointer
	SplitCount       int   // Blocks split in Alloc or shrinking Realloc
	CoalesceForward  int   // Merges with the following block
	CoalesceBackward int   // Merges with the preceding block
	ReallocCalls     int   // Realloc calls with a non-nil pointer and n > 0
	ReallocShrink    int   // Shrunk in place by splitting
	ReallocNoop      int   // Already large enough
	ReallocGrowTail  int   // Grown in place at the arena end
	ReallocCopy      int   // Moved to a new block
	OutOfMemory      int   // Requests that failed with ErrOutOfMemory
}

// Package alloc provides a malloc/free/realloc engine over a growable arena.
//
// # Overview
//
// The allocator carves an arena.Provider into blocks with boundary tags. A
// block is a 32-byte header, the payload, and an 8-byte footer:
//
//	+--------+--------+--------+--------+-------------------+--------+
//	|  size  |  next  |  prev  | state  |      payload      |  size  |
//	+--------+--------+--------+--------+-------------------+--------+
//	0        8        16       24       32             size-8   size
//
// The pointer handed to callers (Ptr) is the payload offset. The footer lets
// Free find the preceding block in O(1).
//
// # Bins
//
// Free blocks are kept in NumBins doubly linked lists threaded through their
// headers. Bin i holds blocks of size (2^(i-1), 2^i]; the last bin also holds
// everything larger. Each bin is sorted by size, so the first block that fits
// is the best fit in that bin:
//
//	Bin  6:   33 -   64 bytes
//	Bin  7:   65 -  128 bytes
//	Bin  8:  129 -  256 bytes
//	...
//	Bin 25:  16M+1 and up
//
// # Operations
//
//   - Alloc(n): search the bin for the required size, then the heads of
//     larger bins; split the block when the excess is above SplitSlack;
//     extend the arena on a miss.
//   - Free(p): merge with a free right neighbor, then a free left neighbor,
//     then insert once.
//   - Realloc(p, n): shrink in place, keep, grow at the arena end, or move.
//   - Check(): verify the partition, boundary tags, and bin table.
//
// # Usage Example
//
//	a, err := alloc.New(arena.NewMemory(0), nil, nil)
//	if err != nil {
//	    return err
//	}
//	p, err := a.Alloc(100)
//	if err != nil {
//	    return err
//	}
//	copy(a.Payload(p), data)
//	p, err = a.Realloc(p, 4096)
//	...
//	a.Free(p)
//
// # Debugging
//
// Set Config.Paranoid to run Check around every call, and HEAP_LOG_ALLOC=1
// to log arena growth and exhaustion through the internal logger.
//
// # Thread Safety
//
// An Allocator is not safe for concurrent use. Use one instance per goroutine.
package alloc

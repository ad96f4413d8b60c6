package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes a structural violation found by Check.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Check verifies the arena and bin table:
//   - walking blocks by size from Low lands exactly on High
//   - each block is aligned, at least format.MinViableBlock, and its footer
//     matches its header
//   - no two free blocks are adjacent
//   - every bin member is a free block in range, in the right bin, correctly
//     back-linked, and not smaller than its predecessor
//   - the bins hold exactly the free blocks seen in the walk
//
// Returns the first violation as a *ValidationError, or nil.
func (a *Allocator) Check() error {
	buf := a.p.Bytes()
	low, high := a.p.Low(), a.p.High()

	freeStarts := make(map[int]struct{})
	prevFree := false
	off := low
	for off < high {
		blk, err := format.ReadBlock(buf[:high], off)
		if err != nil {
			return &ValidationError{Type: "Partition", Message: err.Error(), Offset: off}
		}
		switch {
		case !format.IsAligned(blk.Size):
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("unaligned block size %d", blk.Size),
				Offset:  off,
			}
		case blk.Size < format.MinViableBlock:
			return &ValidationError{
				Type:    "Partition",
				Message: fmt.Sprintf("block size %d below minimum %d", blk.Size, format.MinViableBlock),
				Offset:  off,
			}
		case blk.Footer != blk.Size:
			return &ValidationError{
				Type:    "BoundaryTag",
				Message: fmt.Sprintf("footer size %d != header size %d", blk.Footer, blk.Size),
				Offset:  off,
			}
		case blk.State != stateFree && blk.State != stateAllocated:
			return &ValidationError{
				Type:    "BoundaryTag",
				Message: fmt.Sprintf("unknown state %d", blk.State),
				Offset:  off,
			}
		}
		if blk.Free {
			if prevFree {
				return &ValidationError{
					Type:    "Coalescing",
					Message: "free block follows a free block",
					Offset:  off,
				}
			}
			freeStarts[off] = struct{}{}
		}
		prevFree = blk.Free
		off = blk.End()
	}
	if off != high {
		return &ValidationError{
			Type:    "Partition",
			Message: fmt.Sprintf("walk ended at 0x%X, arena high is 0x%X", off, high),
			Offset:  off,
		}
	}

	members := 0
	for i, head := range a.heads {
		count, err := a.checkBin(i, head, freeStarts)
		if err != nil {
			return err
		}
		if count != a.counts[i] {
			return &ValidationError{
				Type:    "BinCount",
				Message: fmt.Sprintf("bin %d holds %d blocks, counter says %d", i, count, a.counts[i]),
				Offset:  -1,
			}
		}
		members += count
	}

	if members != len(freeStarts) || members != a.freeBlocks {
		return &ValidationError{
			Type:    "BinCount",
			Message: "bins and arena disagree on free blocks",
			Offset:  -1,
			Details: map[string]any{
				"bin_members": members,
				"arena_free":  len(freeStarts),
				"counter":     a.freeBlocks,
			},
		}
	}
	return nil
}

// checkBin walks bin i and returns its length.
func (a *Allocator) checkBin(i, head int, freeStarts map[int]struct{}) (int, error) {
	lo, hi := binBounds(i, len(a.heads))
	count := 0
	prev, prevSize := noBlock, 0

	for cur := head; cur != noBlock; cur = a.next(cur) {
		if _, ok := freeStarts[cur]; !ok {
			return 0, &ValidationError{
				Type:    "BinMembership",
				Message: fmt.Sprintf("bin %d member is not a free block", i),
				Offset:  cur,
			}
		}
		if count >= len(freeStarts) {
			return 0, &ValidationError{
				Type:    "BinLinks",
				Message: fmt.Sprintf("bin %d has a cycle", i),
				Offset:  cur,
			}
		}
		if got := a.prev(cur); got != prev {
			return 0, &ValidationError{
				Type:    "BinLinks",
				Message: fmt.Sprintf("bin %d prev link is 0x%X, expected 0x%X", i, got, prev),
				Offset:  cur,
			}
		}

		size := a.sizeOf(cur)
		if size <= lo || (hi >= 0 && size > hi) {
			return 0, &ValidationError{
				Type:    "BinMembership",
				Message: fmt.Sprintf("size %d does not belong in bin %d", size, i),
				Offset:  cur,
				Details: map[string]any{"bin": i, "lo": lo, "hi": hi},
			}
		}
		if size < prevSize {
			return 0, &ValidationError{
				Type:    "BinOrder",
				Message: fmt.Sprintf("bin %d not sorted: %d after %d", i, size, prevSize),
				Offset:  cur,
			}
		}

		prev, prevSize = cur, size
		count++
	}
	return count, nil
}

// mustCheck panics with the violation when Check fails.
func (a *Allocator) mustCheck(where string) {
	if err := a.Check(); err != nil {
		panic(fmt.Errorf("alloc: %s: %w", where, err))
	}
}

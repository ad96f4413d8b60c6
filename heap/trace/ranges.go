package trace

import (
	"fmt"

	"github.com/google/btree"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// btreeDegree is the node fan-out of the extent index.
const btreeDegree = 16

// extent is a live payload [lo, hi).
type extent struct {
	lo, hi int
	id     int
}

// Less orders extents by start offset.
func (e extent) Less(than btree.Item) bool {
	return e.lo < than.(extent).lo
}

// Validator tracks live payload extents and rejects payloads that are
// misaligned, outside the arena, or overlapping a live payload.
type Validator struct {
	tree      *btree.BTree
	liveBytes int
}

// NewValidator returns an empty validator.
func NewValidator() *Validator {
	return &Validator{tree: btree.New(btreeDegree)}
}

// Add records payload [lo, lo+size) for id. low and high are the arena bounds,
// high exclusive. size must be positive.
func (v *Validator) Add(id, lo, size, low, high int) error {
	if lo%format.Alignment != 0 {
		return fmt.Errorf("%w: id %d at 0x%X", ErrMisaligned, id, lo)
	}
	hi := lo + size
	if size <= 0 || !buf.Within(lo, size, low, high) {
		return fmt.Errorf("%w: id %d [0x%X, 0x%X) not in [0x%X, 0x%X)", ErrOutOfArena, id, lo, hi, low, high)
	}

	e := extent{lo: lo, hi: hi, id: id}
	if other, ok := v.overlapping(e); ok {
		return fmt.Errorf("%w: id %d [0x%X, 0x%X) and id %d [0x%X, 0x%X)",
			ErrOverlap, id, lo, hi, other.id, other.lo, other.hi)
	}

	v.tree.ReplaceOrInsert(e)
	v.liveBytes += size
	return nil
}

// overlapping returns a live extent intersecting e. Extents never overlap
// each other, so only the nearest neighbor on each side can intersect.
func (v *Validator) overlapping(e extent) (extent, bool) {
	var hit extent
	found := false

	v.tree.DescendLessOrEqual(e, func(i btree.Item) bool {
		prev := i.(extent)
		if prev.hi > e.lo {
			hit, found = prev, true
		}
		return false
	})
	if found {
		return hit, true
	}

	v.tree.AscendGreaterOrEqual(e, func(i btree.Item) bool {
		next := i.(extent)
		if next.lo < e.hi {
			hit, found = next, true
		}
		return false
	})
	return hit, found
}

// Remove forgets the extent starting at lo. It reports whether one existed.
func (v *Validator) Remove(lo int) bool {
	item := v.tree.Delete(extent{lo: lo})
	if item == nil {
		return false
	}
	e := item.(extent)
	v.liveBytes -= e.hi - e.lo
	return true
}

// Len returns the number of live extents.
func (v *Validator) Len() int { return v.tree.Len() }

// LiveBytes returns the sum of live extent sizes.
func (v *Validator) LiveBytes() int { return v.liveBytes }

// Clear forgets every extent.
func (v *Validator) Clear() {
	v.tree.Clear(false)
	v.liveBytes = 0
}

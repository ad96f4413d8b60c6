package alloc

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// maxRequest is the largest payload for which required size does not overflow.
const maxRequest = math.MaxInt - format.Overhead - format.Alignment

// Allocator is a boundary-tag allocator with power-of-two size-class bins
// over a single growable arena.
//
// Every block carries a 32-byte header (size, next, prev, state) and an
// 8-byte footer repeating the size. Free blocks live in exactly one bin,
// sorted by size. Freeing merges with both physical neighbors before the
// single bin insert.
//
// NOT thread-safe. Create one Allocator per goroutine.
type Allocator struct {
	p   arena.Provider
	dt  DirtyTracker // may be nil
	cfg Config

	// buf caches p.Bytes(); refreshed after every Extend and Reset.
	buf []byte

	heads      []int // first block of each bin, noBlock when empty
	counts     []int // members per bin
	freeBlocks int

	stats Stats

	// Test hook: called with the byte count before every arena extension.
	onGrow func(int)
}

// New creates an allocator over p.
//
// Parameters:
//   - p: The arena to allocate from. Its current contents are discarded by Init.
//   - dt: Dirty tracker notified of every metadata write (can be nil)
//   - cfg: Tunables (use nil for DefaultConfig)
//
// New calls Init, so the arena is reset before the allocator is returned.
func New(p arena.Provider, dt DirtyTracker, cfg *Config) (*Allocator, error) {
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Allocator{
		p:   p,
		dt:  dt,
		cfg: cfg.normalized(),
	}
	a.heads = make([]int, a.cfg.NumBins)
	a.counts = make([]int, a.cfg.NumBins)

	if err := a.Init(); err != nil {
		return nil, err
	}
	return a, nil
}

// Init resets the arena, empties every bin, and clears the statistics. All
// previously returned pointers become invalid.
func (a *Allocator) Init() error {
	if err := a.p.Reset(); err != nil {
		return fmt.Errorf("alloc: reset arena: %w", err)
	}
	a.buf = a.p.Bytes()
	for i := range a.heads {
		a.heads[i] = noBlock
		a.counts[i] = 0
	}
	a.freeBlocks = 0
	a.stats = Stats{}
	return nil
}

// Alloc returns a payload of at least n bytes aligned to format.Alignment.
//
// Alloc(0) returns (Nil, nil). When no free block fits and the arena cannot
// grow, it returns Nil and an error wrapping ErrOutOfMemory.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	if a.cfg.Paranoid {
		a.mustCheck("before alloc")
		defer a.mustCheck("after alloc")
	}
	return a.alloc(n)
}

func (a *Allocator) alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++
	if n == 0 {
		return Nil, nil
	}

	required, err := a.required(n)
	if err != nil {
		return Nil, err
	}

	if off := a.findFit(required); off != noBlock {
		a.remove(off)
		a.split(off, required)
		a.stats.AllocFastPath++
		return payloadOf(off), nil
	}

	off, err := a.grow(required)
	if err != nil {
		return Nil, err
	}
	a.writeBlock(off, required, stateAllocated)
	a.stats.AllocSlowPath++
	return payloadOf(off), nil
}

// required returns the block size that serves an n-byte payload.
func (a *Allocator) required(n int) (int, error) {
	if n < 0 || n > maxRequest {
		a.stats.OutOfMemory++
		return 0, fmt.Errorf("%w: request of %d bytes", ErrOutOfMemory, n)
	}
	return max(format.BlockSize(n), a.cfg.MinBlockSize), nil
}

// shouldSplit reports whether excess bytes past the required size are worth
// carving into their own free block.
func (a *Allocator) shouldSplit(excess int) bool {
	return excess > a.cfg.SplitSlack && excess >= format.MinViableBlock
}

// split trims the allocated block at off to required bytes when the excess is
// large enough, releasing the remainder. Otherwise the block keeps its size.
func (a *Allocator) split(off, required int) {
	size := a.sizeOf(off)
	excess := size - required
	if !a.shouldSplit(excess) {
		return
	}

	a.writeBlock(off, required, stateAllocated)
	rest := off + required
	a.writeBlock(rest, excess, stateAllocated)
	a.stats.SplitCount++
	a.release(rest)
}

// grow extends the arena by n bytes and returns the offset of the new bytes.
func (a *Allocator) grow(n int) (int, error) {
	if a.onGrow != nil {
		a.onGrow(n)
	}

	off, err := a.p.Extend(n)
	if err != nil {
		a.stats.OutOfMemory++
		if logAlloc {
			logger.Debug("alloc: arena exhausted",
				"need", n, "high", a.p.High(), "free_blocks", a.freeBlocks, "err", err)
		}
		if errors.Is(err, arena.ErrExhausted) {
			return 0, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		return 0, fmt.Errorf("%w: extend by %d: %w", ErrOutOfMemory, n, err)
	}

	a.buf = a.p.Bytes()
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(n)
	if logAlloc {
		logger.Debug("alloc: arena grown", "off", off, "bytes", n, "high", a.p.High())
	}
	return off, nil
}

// Payload returns the usable bytes of p. The slice is invalidated by the next
// call that may grow the arena.
func (a *Allocator) Payload(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	off := blockOf(p)
	end := off + a.sizeOf(off) - format.FooterSize
	return a.buf[p:end:end]
}

// UsableSize returns the payload capacity of p, which may exceed the size
// originally requested.
func (a *Allocator) UsableSize(p Ptr) int {
	if p == Nil {
		return 0
	}
	return format.PayloadSize(a.sizeOf(blockOf(p)))
}

// Stats returns a snapshot of the counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Config returns the normalized configuration in use.
func (a *Allocator) Config() Config { return a.cfg }

// FreeBlocks returns the number of blocks currently held in bins.
func (a *Allocator) FreeBlocks() int { return a.freeBlocks }

// BinCounts returns the number of free blocks per bin.
func (a *Allocator) BinCounts() []int {
	out := make([]int, len(a.counts))
	copy(out, a.counts)
	return out
}

// Footprint returns the current arena size.
func (a *Allocator) Footprint() int { return a.p.High() - a.p.Low() }

// Arena returns the provider the allocator carves.
func (a *Allocator) Arena() arena.Provider { return a.p }

package dirty

import (
	"context"
	"os"
	"sort"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// FlushMode controls durability of a flush.
type FlushMode int

const (
	// FlushDataOnly msyncs dirty pages only. The caller syncs the file
	// descriptor later, e.g. after batching several replays.
	FlushDataOnly FlushMode = iota

	// FlushFull msyncs dirty pages and then syncs the file descriptor
	// (F_FULLFSYNC on macOS).
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Range is a dirty byte range in arena offsets.
type Range struct {
	Off int64
	Len int64
}

// Tracker accumulates dirty ranges and flushes them.
//
// NOT thread-safe.
type Tracker struct {
	b        Backing
	ranges   []Range
	pageSize int64
	added    int64 // total bytes reported since the last flush or reset
}

// NewTracker creates a tracker over b.
func NewTracker(b Backing) *Tracker {
	return &Tracker{
		b:        b,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: int64(os.Getpagesize()),
	}
}

// Add records a dirty range. Zero or negative lengths are ignored.
//
// Add only appends; page alignment and merging happen at flush time.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
	t.added += int64(length)
}

// Pending returns the number of raw ranges recorded since the last flush.
func (t *Tracker) Pending() int { return len(t.ranges) }

// AddedBytes returns the sum of raw range lengths since the last flush.
func (t *Tracker) AddedBytes() int64 { return t.added }

// FlushDataOnly msyncs every tracked range and clears the tracker.
//
// If ctx is cancelled between ranges, some ranges may already be on disk and
// the tracker keeps all of them for a retry.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.b.Mapping()
	if len(data) == 0 {
		t.Reset()
		return nil
	}

	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}

	t.Reset()
	return nil
}

// Flush flushes tracked ranges and, for FlushFull, syncs the file descriptor.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := t.FlushDataOnly(ctx); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fdatasync(t.b.FD(), mode == FlushFull)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
	t.added = 0
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, sorted, merged ranges that
// the next flush would sync.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping or
// adjacent ones.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize

		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			current.Len = max(current.Off+current.Len, next.Off+next.Len) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

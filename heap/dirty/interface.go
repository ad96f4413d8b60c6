package dirty

import "context"

// DirtyTracker is the minimal interface for reporting modified byte ranges.
// off is an arena offset, length is the number of bytes written.
//
// Components that only write (the allocator, the replay harness) depend on
// this interface and never flush.
type DirtyTracker interface {
	Add(off, length int)
}

// FlushableTracker extends DirtyTracker with flushing, for callers that own
// durability of the arena.
type FlushableTracker interface {
	DirtyTracker

	// Flush writes tracked ranges back to the file according to mode.
	Flush(ctx context.Context, mode FlushMode) error
}

// Backing is the storage a Tracker flushes. *arena.Mapped satisfies it.
type Backing interface {
	// Mapping returns the whole current mapping. It may change after the
	// arena grows, so the tracker asks for it at flush time.
	Mapping() []byte

	// FD returns the backing file descriptor.
	FD() int
}

var (
	_ FlushableTracker = (*Tracker)(nil)
)

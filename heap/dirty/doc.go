// Package dirty tracks modified byte ranges of a file-backed arena and
// flushes them to disk.
//
// The allocator reports every header, footer, and link write through the
// DirtyTracker interface. A Tracker records those ranges cheaply, and at flush
// time page-aligns, sorts, and merges them before calling msync on each
// merged range.
//
// # Usage
//
//	m, _ := arena.OpenMapped(path, arena.MappedOptions{})
//	dt := dirty.NewTracker(m)
//	a, _ := alloc.New(m, dt, alloc.DefaultConfig())
//	...
//	if err := dt.Flush(ctx, dirty.FlushFull); err != nil {
//	    return err
//	}
//
// # Platforms
//
// On Linux msync is issued per merged range. On macOS msync must be given the
// original mapping address, so the whole mapping is synced; the kernel still
// only writes dirty pages. FlushFull uses F_FULLFSYNC on macOS. Other
// platforms report arena.ErrUnsupported.
//
// A Tracker is not safe for concurrent use.
package dirty

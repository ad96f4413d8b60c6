// Package testutil holds shared test setup: locating sample traces from any
// package directory and building allocators over mapped arenas.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/trace"
)

// TracePath returns the path of the sample trace name.
// Calls t.Skip if the trace is not found.
func TracePath(t *testing.T, name string) string {
	t.Helper()
	return resolveTestPath(t, filepath.Join(TraceDir, name))
}

// ProfilePath returns the path of the sample profile file name.
func ProfilePath(t *testing.T, name string) string {
	t.Helper()
	return resolveTestPath(t, filepath.Join(ProfileDir, name))
}

// LoadTraces parses the named sample traces.
//
// Example:
//
//	traces := testutil.LoadTraces(t, "short1.rep", "trace_c0_v0")
func LoadTraces(t *testing.T, names ...string) []*trace.Trace {
	t.Helper()
	out := make([]*trace.Trace, 0, len(names))
	for _, name := range names {
		tr, err := trace.ParseFile(TracePath(t, name))
		if err != nil {
			t.Fatalf("Failed to parse trace %s: %v", name, err)
		}
		out = append(out, tr)
	}
	return out
}

// SetupMappedAllocator creates an allocator over a file-backed arena in a
// temporary directory, with a dirty tracker recording its metadata writes.
// The arena is closed when the test ends. A nil cfg uses the default.
// Calls t.Skip on platforms without mapped arenas.
func SetupMappedAllocator(t *testing.T, cfg *alloc.Config) (*alloc.Allocator, *arena.Mapped, *dirty.Tracker) {
	t.Helper()

	m, err := arena.OpenMapped(filepath.Join(t.TempDir(), "heap.arena"), arena.MappedOptions{Chunk: 64 << 10})
	if err != nil {
		if errors.Is(err, arena.ErrUnsupported) {
			t.Skip("mapped arenas are not supported on this platform")
		}
		t.Fatalf("Failed to open mapped arena: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	tracker := dirty.NewTracker(m)
	a, err := alloc.New(m, tracker, cfg)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	return a, m, tracker
}

// resolveTestPath attempts to find a file by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t *testing.T, relativePath string) string {
	t.Helper()

	candidates := []string{
		relativePath,                                  // From repo root
		filepath.Join("..", relativePath),             // One level deep
		filepath.Join("..", "..", relativePath),       // Two levels deep (e.g., heap/tuning/)
		filepath.Join("..", "..", "..", relativePath), // Three levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("Test file not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}

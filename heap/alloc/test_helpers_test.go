package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
)

// newTestAllocator returns an allocator over a fresh in-memory arena.
// A nil cfg uses DefaultConfig with Paranoid enabled.
func newTestAllocator(t testing.TB, limit int, cfg *Config) (*Allocator, *arena.Memory) {
	t.Helper()
	if cfg == nil {
		def := DefaultConfig()
		def.Paranoid = true
		cfg = &def
	}
	m := arena.NewMemory(limit)
	a, err := New(m, nil, cfg)
	require.NoError(t, err)
	return a, m
}

// mockDirtyTracker records every reported range.
type mockDirtyTracker struct {
	ranges [][2]int
}

func newMockDirtyTracker() *mockDirtyTracker { return &mockDirtyTracker{} }

func (m *mockDirtyTracker) Add(off, length int) {
	m.ranges = append(m.ranges, [2]int{off, length})
}

// covers reports whether some recorded range contains [off, off+length).
func (m *mockDirtyTracker) covers(off, length int) bool {
	for _, r := range m.ranges {
		if r[0] <= off && off+length <= r[0]+r[1] {
			return true
		}
	}
	return false
}

// fillPattern writes a pattern derived from seed into b.
func fillPattern(b []byte, seed int) {
	for i := range b {
		b[i] = byte(seed*31 + i)
	}
}

// requirePattern asserts b still holds the pattern written by fillPattern.
func requirePattern(t testing.TB, b []byte, seed int) {
	t.Helper()
	for i := range b {
		if b[i] != byte(seed*31+i) {
			require.Failf(t, "pattern mismatch", "byte %d: got 0x%02X want 0x%02X", i, b[i], byte(seed*31+i))
		}
	}
}

// requireNoOverlap asserts the payloads of p and q do not overlap.
func requireNoOverlap(t testing.TB, a *Allocator, p, q Ptr) {
	t.Helper()
	pEnd := p + a.UsableSize(p)
	qEnd := q + a.UsableSize(q)
	require.True(t, pEnd <= q || qEnd <= p,
		"payloads overlap: [0x%X,0x%X) and [0x%X,0x%X)", p, pEnd, q, qEnd)
}

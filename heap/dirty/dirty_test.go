package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceBacking is an in-memory Backing for coalescing tests.
type sliceBacking struct{ data []byte }

func (s *sliceBacking) Mapping() []byte { return s.data }
func (s *sliceBacking) FD() int         { return -1 }

func newTestTracker() *Tracker {
	t := NewTracker(&sliceBacking{data: make([]byte, 64<<10)})
	t.pageSize = 4096
	return t
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := newTestTracker()
	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, int64(0), coalesced[0].Off)
	assert.Equal(t, int64(4096), coalesced[0].Len)
}

func Test_DirtyTracker_Coalesce(t *testing.T) {
	tests := []struct {
		name string
		adds [][2]int
		want []Range
	}{
		{
			name: "adjacent pages merge",
			adds: [][2]int{{4096, 4096}, {8192, 4096}},
			want: []Range{{Off: 4096, Len: 8192}},
		},
		{
			name: "overlapping merge",
			adds: [][2]int{{4096, 6000}, {8000, 100}},
			want: []Range{{Off: 4096, Len: 8192}},
		},
		{
			name: "gap keeps ranges apart",
			adds: [][2]int{{0, 10}, {16384, 10}},
			want: []Range{{Off: 0, Len: 4096}, {Off: 16384, Len: 4096}},
		},
		{
			name: "unsorted input is sorted",
			adds: [][2]int{{20000, 8}, {40, 8}, {12288, 4096}},
			want: []Range{{Off: 0, Len: 4096}, {Off: 12288, Len: 12288}},
		},
		{
			name: "same page many times",
			adds: [][2]int{{8, 32}, {64, 8}, {4000, 96}},
			want: []Range{{Off: 0, Len: 4096}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			for _, a := range tt.adds {
				tracker.Add(a[0], a[1])
			}
			assert.Equal(t, tt.want, tracker.DebugCoalescedRanges())
		})
	}
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := newTestTracker()
	tracker.Add(100, 0)
	tracker.Add(100, -4)
	assert.Equal(t, 0, tracker.Pending())
	assert.Nil(t, tracker.DebugCoalescedRanges())
}

func Test_DirtyTracker_ResetAndCounters(t *testing.T) {
	tracker := newTestTracker()
	tracker.Add(0, 32)
	tracker.Add(64, 8)
	assert.Equal(t, 2, tracker.Pending())
	assert.Equal(t, int64(40), tracker.AddedBytes())

	raw := tracker.DebugRanges()
	raw[0].Len = 999
	assert.Equal(t, int64(32), tracker.DebugRanges()[0].Len, "DebugRanges must return a copy")

	tracker.Reset()
	assert.Equal(t, 0, tracker.Pending())
	assert.Equal(t, int64(0), tracker.AddedBytes())
}

func Test_DirtyTracker_FlushEmptyIsNoop(t *testing.T) {
	tracker := newTestTracker()
	require.NoError(t, tracker.FlushDataOnly(context.Background()))
}

func Test_DirtyTracker_FlushPreCancelled(t *testing.T) {
	tracker := newTestTracker()
	tracker.Add(4096, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.FlushDataOnly(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tracker.Pending(), "ranges are kept for a retry")
}

func Test_FlushMode_String(t *testing.T) {
	assert.Equal(t, "data-only", FlushDataOnly.String())
	assert.Equal(t, "full", FlushFull.String())
	assert.Equal(t, "unknown", FlushMode(9).String())
}

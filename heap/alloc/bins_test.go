package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilLog2(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3},
		{48, 6}, {64, 6}, {65, 7}, {128, 7}, {129, 8},
		{1 << 20, 20}, {1<<20 + 1, 21},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ceilLog2(tt.n), "ceilLog2(%d)", tt.n)
	}
}

func TestBinIndex_ClampsToOverflowBin(t *testing.T) {
	a, _ := newTestAllocator(t, 1<<20, nil)
	last := DefaultNumBins - 1

	assert.Equal(t, 6, a.binIndex(64))
	assert.Equal(t, last, a.binIndex(1<<last))
	assert.Equal(t, last, a.binIndex(1<<last+8))
	assert.Equal(t, last, a.binIndex(1<<40))
}

func TestBinBounds(t *testing.T) {
	lo, hi := binBounds(8, DefaultNumBins)
	assert.Equal(t, 128, lo)
	assert.Equal(t, 256, hi)

	lo, hi = binBounds(DefaultNumBins-1, DefaultNumBins)
	assert.Equal(t, 1<<(DefaultNumBins-2), lo)
	assert.Equal(t, -1, hi)
}

func TestBins_SortedInsertAndRemove(t *testing.T) {
	a, _ := newTestAllocator(t, 1<<20, nil)

	// Four blocks in bin 8 (129..256), separated by guards.
	sizes := []int{200, 144, 256, 176}
	var ptrs []Ptr
	for _, s := range sizes {
		p, err := a.Alloc(s - 40)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
		_, err = a.Alloc(16)
		require.NoError(t, err)
	}
	for _, p := range ptrs {
		a.Free(p)
	}
	require.Equal(t, 4, a.BinCounts()[8])

	var got []int
	for cur := a.heads[8]; cur != noBlock; cur = a.next(cur) {
		got = append(got, a.sizeOf(cur))
	}
	assert.Equal(t, []int{144, 176, 200, 256}, got)

	// Remove from the middle through an allocation of the 176 block.
	p, err := a.Alloc(176 - 40)
	require.NoError(t, err)
	assert.Equal(t, ptrs[3], p)
	assert.Equal(t, 3, a.BinCounts()[8])
	require.NoError(t, a.Check())
}

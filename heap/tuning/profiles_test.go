package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
)

func TestClassFromPath(t *testing.T) {
	tests := []struct {
		path  string
		class int
		ok    bool
	}{
		{"traces/trace_c0_v0", 0, true},
		{"/tmp/trace_c3_v1.rep", 3, true},
		{"trace_c8_v9", 8, true},
		{"trace_c9_v0", 0, false},
		{"short1.rep", 0, false},
		{"trace_cx_v0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c, ok := ClassFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.class, c)
		})
	}
}

func TestForClass(t *testing.T) {
	// Tiny measured minimums clamp to the smallest viable block.
	c0 := ForClass(0)
	assert.Equal(t, "class0", c0.Name)
	assert.Equal(t, 48, c0.MinBlockSize)
	assert.Equal(t, 48, c0.SplitSlack)
	assert.Zero(t, c0.MaxOversize)
	assert.True(t, c0.GrowInPlace)

	c7 := ForClass(7)
	assert.Equal(t, 1024, c7.MinBlockSize)
	assert.Equal(t, 160, c7.SplitSlack)

	for _, class := range []int{-1, NumClasses, 99} {
		d := ForClass(class)
		assert.Equal(t, "default", d.Name)
		assert.Equal(t, 64, d.MinBlockSize)
		assert.Equal(t, 160, d.SplitSlack)
	}

	for c := 0; c < NumClasses; c++ {
		require.NoError(t, ForClass(c).Validate(), "class %d", c)
	}
}

func TestMaxDiff(t *testing.T) {
	assert.Equal(t, 128, MaxDiff(2))
	assert.Equal(t, 512, MaxDiff(-1))
}

func TestBuiltin_Entries(t *testing.T) {
	p := Builtin()
	entries := p.Entries()
	require.Len(t, entries, NumClasses+1)
	for i := 0; i < NumClasses; i++ {
		assert.Equal(t, i, entries[i].Class)
		assert.Equal(t, ForClass(i), entries[i].Config)
	}
	assert.Equal(t, -1, entries[NumClasses].Class)

	assert.Equal(t, ForClass(3), p.ForPath("x/trace_c3_v0"))
	assert.Equal(t, ForClass(-1), p.ForPath("short1.rep"))
}

func TestLoadFile(t *testing.T) {
	p, err := LoadFile("testdata/profiles.toml")
	require.NoError(t, err)

	c3 := p.For(3, true)
	assert.Equal(t, "c3-wide", c3.Name)
	assert.Equal(t, 64, c3.SplitSlack)
	assert.Equal(t, ForClass(3).MinBlockSize, c3.MinBlockSize, "unset fields keep the built-in value")

	c7 := p.For(7, true)
	assert.Equal(t, "class7", c7.Name)
	assert.Equal(t, 512, c7.MinBlockSize)
	assert.Equal(t, 4096, c7.MaxOversize)

	fb := p.For(0, false)
	assert.Equal(t, "fallback-nogrow", fb.Name)
	assert.False(t, fb.GrowInPlace)

	assert.Equal(t, ForClass(1), p.For(1, true))
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("testdata/bad_class.toml")
	require.ErrorIs(t, err, ErrBadProfile)

	_, err = LoadFile("testdata/unknown_key.toml")
	require.ErrorIs(t, err, ErrBadProfile)
	assert.Contains(t, err.Error(), "split_slak")

	_, err = LoadFile("testdata/bad_bins.toml")
	require.ErrorIs(t, err, ErrBadProfile)
	require.ErrorIs(t, err, alloc.ErrBadConfig)

	_, err = LoadFile("testdata/missing.toml")
	require.Error(t, err)
}

func TestProfiles_EncodeLoadRoundTrip(t *testing.T) {
	p := Builtin()
	tuned := ForClass(4)
	tuned.Name = "class4-tuned"
	tuned.SplitSlack = 256
	tuned.GrowInPlace = false
	p.Set(4, tuned)

	path := filepath.Join(t.TempDir(), "tuned.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, p.Encode(f))
	require.NoError(t, f.Close())

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.Entries(), got.Entries())
}

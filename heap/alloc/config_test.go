package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "zero value", cfg: Config{}, ok: true},
		{name: "default", cfg: DefaultConfig(), ok: true},
		{name: "too few bins", cfg: Config{NumBins: 3}},
		{name: "too many bins", cfg: Config{NumBins: 63}},
		{name: "negative min block", cfg: Config{MinBlockSize: -1}},
		{name: "negative slack", cfg: Config{SplitSlack: -8}},
		{name: "negative oversize", cfg: Config{MaxOversize: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBadConfig)
		})
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(arena.NewMemory(0), nil, &Config{NumBins: 2})
	require.ErrorIs(t, err, ErrBadConfig)
}

func TestConfig_Normalized(t *testing.T) {
	c := Config{MinBlockSize: 1}.normalized()
	assert.Equal(t, format.MinViableBlock, c.MinBlockSize)
	assert.Equal(t, DefaultNumBins, c.NumBins)

	c = Config{MinBlockSize: 50}.normalized()
	assert.Equal(t, 56, c.MinBlockSize)

	c = Config{}.normalized()
	assert.Equal(t, DefaultMinBlockSize, c.MinBlockSize)
}

func TestConfig_Presets(t *testing.T) {
	names := map[string]bool{}
	for _, p := range Presets() {
		require.NoError(t, p.Validate(), p.Name)
		assert.False(t, names[p.Name], "duplicate preset %s", p.Name)
		names[p.Name] = true
	}
	assert.Equal(t, "Balanced", DefaultConfig().Name)
}

func TestConfig_String(t *testing.T) {
	assert.Equal(t, "Balanced(bins=26 min=64 slack=128 oversize=0 grow=true)", ConfigBalanced.String())
	assert.Contains(t, Config{}.String(), "custom(")
}

func TestNew_NilConfigUsesDefault(t *testing.T) {
	a, err := New(arena.NewMemory(0), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), a.Config())
}

func TestNew_SmallBinTable(t *testing.T) {
	cfg := Config{NumBins: 8, Paranoid: true}
	a, _ := newTestAllocator(t, 1<<20, &cfg)

	// Everything above 64 bytes shares bin 7.
	big, err := a.Alloc(4000)
	require.NoError(t, err)
	_, err = a.Alloc(16)
	require.NoError(t, err)
	a.Free(big)
	assert.Equal(t, 1, a.BinCounts()[7])

	p, err := a.Alloc(2000)
	require.NoError(t, err)
	assert.Equal(t, big, p)
}

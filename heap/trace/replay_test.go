package trace

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/arena"
)

func newParanoid(t *testing.T, limit int) *alloc.Allocator {
	t.Helper()
	cfg := alloc.DefaultConfig()
	cfg.Paranoid = true
	a, err := alloc.New(arena.NewMemory(limit), nil, &cfg)
	require.NoError(t, err)
	return a
}

func mustParse(t *testing.T, s string) *Trace {
	t.Helper()
	tr, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	return tr
}

func TestReplay_TestdataTraces(t *testing.T) {
	paths, err := filepath.Glob("testdata/*")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			tr, err := ParseFile(path)
			require.NoError(t, err)

			a := newParanoid(t, 0)
			res, err := Replay(context.Background(), a, tr, Options{CheckEvery: 1})
			require.NoError(t, err)
			assert.Equal(t, len(tr.Ops), res.Ops)
			assert.Greater(t, res.Footprint, 0)
			assert.Greater(t, res.Utilization, 0.0)
			assert.LessOrEqual(t, res.Utilization, 1.0)
			assert.Equal(t, tr.Name, res.Trace)
		})
	}
}

func TestReplay_ReallocGrowFootprint(t *testing.T) {
	tr, err := ParseFile("testdata/realloc_grow.rep")
	require.NoError(t, err)

	a := newParanoid(t, 0)
	res, err := Replay(context.Background(), a, tr, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4832, res.Footprint)
	assert.Equal(t, 4196, res.PeakLive)
	assert.InDelta(t, 4196.0/4832.0, res.Utilization, 1e-9)
	assert.Equal(t, 2, res.Stats.ReallocGrowTail)
	assert.Equal(t, 1, res.Stats.ReallocCopy)
	assert.Equal(t, 1, a.FreeBlocks(), "everything freed and merged")
}

func TestReplay_ResetsBetweenRuns(t *testing.T) {
	tr, err := ParseFile("testdata/short1.rep")
	require.NoError(t, err)

	a := newParanoid(t, 0)
	first, err := Replay(context.Background(), a, tr, Options{})
	require.NoError(t, err)
	second, err := Replay(context.Background(), a, tr, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Footprint, second.Footprint)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestReplay_OutOfMemory(t *testing.T) {
	tr := mustParse(t, "0\n2\n2\n1\na 0 1000\na 1 1000\n")
	a := newParanoid(t, 1500)

	_, err := Replay(context.Background(), a, tr, Options{})
	require.ErrorIs(t, err, alloc.ErrOutOfMemory)
	assert.Contains(t, err.Error(), "op 1")
}

func TestReplay_BadOps(t *testing.T) {
	tests := []struct {
		name  string
		trace string
	}{
		{name: "double alloc", trace: "0\n1\n2\n1\na 0 8\na 0 8\n"},
		{name: "write past payload", trace: "0\n1\n2\n1\na 0 8\nw 0 9\n"},
		{name: "write to free id", trace: "0\n1\n1\n1\nw 0 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newParanoid(t, 0)
			_, err := Replay(context.Background(), a, mustParse(t, tt.trace), Options{})
			require.ErrorIs(t, err, ErrBadOp)
		})
	}
}

func TestReplay_ZeroSizeOps(t *testing.T) {
	tr := mustParse(t, "0\n2\n4\n1\na 0 0\nf 0\nr 1 0\nf 1\n")
	a := newParanoid(t, 0)

	res, err := Replay(context.Background(), a, tr, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Footprint)
	assert.Equal(t, 0.0, res.Utilization)
}

func TestReplay_DetectsCorruption(t *testing.T) {
	tr := mustParse(t, "0\n1\n2\n1\na 0 64\nr 0 4096\n")
	a := newParanoid(t, 0)

	// Replay the first op, then scribble on the payload by hand.
	r := &replayer{a: a, p: a.Arena(), v: NewValidator(), ptrs: make([]alloc.Ptr, 1), sizes: make([]int, 1)}
	require.NoError(t, r.step(tr.Ops[0]))
	a.Payload(r.ptrs[0])[3] ^= 0xFF

	err := r.step(tr.Ops[1])
	require.ErrorIs(t, err, ErrCorrupted)
}

func TestReplay_Cancelled(t *testing.T) {
	tr, err := ParseFile("testdata/trace_c0_v0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Replay(ctx, newParanoid(t, 0), tr, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestReplay_NoPatterns(t *testing.T) {
	tr, err := ParseFile("testdata/trace_c3_v1")
	require.NoError(t, err)

	a, err := alloc.New(arena.NewMemory(0), nil, nil)
	require.NoError(t, err)
	res, err := Replay(context.Background(), a, tr, Options{NoPatterns: true})
	require.NoError(t, err)
	assert.Equal(t, len(tr.Ops), res.Ops)
}

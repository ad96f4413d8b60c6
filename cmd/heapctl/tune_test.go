package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/tuning"
	"github.com/joshuapare/heapkit/internal/testutil"
)

func TestTuneCommand_ByClass(t *testing.T) {
	resetFlags()
	jsonOut = true
	tuneByClass = true
	tuneTop = 2
	tuneWriteConfig = filepath.Join(t.TempDir(), "tuned.toml")

	args := []string{
		testutil.TracePath(t, "trace_c0_v0"),
		testutil.TracePath(t, "trace_c3_v1"),
		testutil.TracePath(t, "short1.rep"),
	}
	out, err := captureOutput(t, func() error { return runTune(context.Background(), args) })
	require.NoError(t, err)

	var groups []tuneGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, -1, groups[0].Class)
	assert.Equal(t, 0, groups[1].Class)
	assert.Equal(t, 3, groups[2].Class)
	for _, g := range groups {
		assert.Len(t, g.Traces, 1)
		assert.Len(t, g.Candidates, 2)
		assert.Nil(t, g.Candidates[0].Results)
	}

	p, err := tuning.LoadFile(tuneWriteConfig)
	require.NoError(t, err)
	assert.Equal(t, "class0-tuned", p.For(0, true).Name)
	assert.Equal(t, "class3-tuned", p.For(3, true).Name)
	assert.Equal(t, "tuned", p.For(0, false).Name)
	assert.Equal(t, tuning.ForClass(5), p.For(5, true))
}

func TestTuneCommand_Text(t *testing.T) {
	resetFlags()
	tuneTop = 3

	out, err := captureOutput(t, func() error {
		return runTune(context.Background(), []string{testutil.TracePath(t, "short1.rep")})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "all traces (1)")
	assert.Contains(t, out, "rank")
	assert.Contains(t, out, "grid-m")
}

package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	// Drain concurrently so large outputs cannot block the writer.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	logLevel, logDir = "", ""

	replayConfig, replayProfile = "auto", ""
	replayParanoid, replaySync, replayNoPatterns = false, false, false
	replayMapped = ""
	replayWorkers, replayCheckEvery = 1, 0
	replayReference = 5_000_000
	replayLang = "en"

	tuneMinBlocks = []int{64, 128}
	tuneSlacks = []int{8, 1024}
	tuneOversizes = []int{0}
	tuneWorkers, tuneTop = 1, 5
	tuneByClass = false
	tuneWriteConfig = ""

	profilesFile = ""
}

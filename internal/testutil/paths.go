package testutil

// Test data paths relative to the repository root.
// These constants should be used instead of hardcoding paths in test files.
const (
	// TraceDir holds the sample allocation traces.
	TraceDir = "heap/trace/testdata"

	// ProfileDir holds the sample TOML profile files.
	ProfileDir = "heap/tuning/testdata"
)

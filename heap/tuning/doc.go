// Package tuning selects allocator configurations per workload.
//
// Traces are grouped into classes by their file name (trace_c{C}_v{V}). Each
// class has a built-in Config derived from measured minimum block sizes and
// split thresholds; TOML profile files can override any class. Search
// evaluates a power-of-two grid of tunables over a set of traces and ranks
// the points by utilization.
package tuning

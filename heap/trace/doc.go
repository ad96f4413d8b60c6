// Package trace parses allocation traces and replays them against an
// allocator while independently validating every returned payload.
//
// # Trace format
//
// A trace is a text file with a four-line header followed by one operation
// per line:
//
//	<suggested heap size>
//	<number of ids>
//	<number of ops>
//	<weight>
//	a <id> <size>     allocate size bytes for id
//	r <id> <size>     reallocate id to size bytes
//	f <id>            free id
//	w <id> <size>     write size bytes into id's payload
//
// # Validation
//
// Replay keeps the live payload extents in a B-tree ordered by start offset.
// Every payload returned by the allocator must be aligned, lie inside the
// arena, and not overlap any live extent. Payloads are filled with a pattern
// derived from the id; a reallocation must preserve the pattern up to the
// smaller of the old and new sizes.
//
// # Batches
//
// RunAll replays many (trace, config) jobs on an ants worker pool. Each job
// gets its own arena and allocator.
package trace

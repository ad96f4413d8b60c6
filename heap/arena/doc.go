// Package arena provides the growable byte ranges that heapkit allocators
// manage.
//
// # Overview
//
// An arena is a single contiguous range [Low(), High()) that only grows, in
// the manner of sbrk, until it is Reset. The allocator never touches raw OS
// memory itself; it asks its Provider to Extend the range and addresses every
// block by its offset from Low().
//
// # Implementations
//
// Memory: slice-backed arena with a hard byte limit
//
//   - Extend copies into a larger backing array when capacity runs out
//   - Offsets stay valid across growth, slices returned by Bytes() do not
//   - Reset keeps the backing array for the next run
//
// Mapped: file-backed arena (linux, darwin)
//
//   - The file grows in chunks and is remapped with mmap
//   - Sync flushes the mapping with msync and fsync
//   - Use with heap/dirty to flush only modified pages
//
// # Bounds Convention
//
// High() is exclusive: it is the offset one past the last valid byte, and
// equals Low() when the arena is empty.
//
// # Thread Safety
//
// Providers are not thread-safe. Each allocator owns its provider.
package arena

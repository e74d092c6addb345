// Package arena implements a fixed-capacity bump-down memory arena.
//
// An Arena owns one contiguous block of memory that it obtains exactly once,
// at construction, from a pluggable Backing allocator. Allocation is a cursor
// move: the cursor starts at the top of the block and is bumped toward the
// base on every Alloc call, so there is no per-allocation bookkeeping and no
// individual deallocation. The whole arena is reclaimed at once with Reset,
// which rewinds the cursor and invalidates every previously issued allocation.
//
// Typical usage is one arena per request or per frame: allocate freely while
// the unit of work runs, then Reset (or Release) when it ends.
//
// Allocations are handed out as arena.Ptr values, which are plain offsets and
// are not considered by the Go runtime as legit pointer types, so the GC can
// skip them during the concurrent mark phase. An arena.Ptr is converted to
// unsafe.Pointer right before use with Arena.ToRef.
//
// The arena is not safe for concurrent use. All handles to one arena must be
// used from a single logical thread of control, or the cursor updates will
// race and allocations will overlap. Wrap the arena behind a mutex if you
// need cross-goroutine sharing.
package arena

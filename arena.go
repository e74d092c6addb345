package arena

import (
	"fmt"
	"math/rand"
	"unsafe"

	"github.com/go-kit/log"
)

// Options control arena construction.
type Options struct {
	// Capacity is the fixed size of the arena block in bytes.
	// It can't be zero and it never changes after construction.
	Capacity uint

	// Backing supplies the arena block. Nil means HeapBacking.
	Backing Backing

	// TraceLog, when set, receives one structured event per allocation,
	// reset and release. Nil disables tracing.
	TraceLog log.Logger
}

// Arena is a fixed-capacity bump-down allocator over one contiguous block.
//
// The cursor starts at the top of the block and moves toward the base on
// every Alloc call. Alignment is reached by rounding the candidate address
// down, which only ever discards a few bytes at the top of the remaining
// capacity and never encroaches on already-issued memory. When the cursor
// would cross below the base, Alloc fails with AllocationLimitError and the
// cursor stays where it was.
//
// Not safe for concurrent use, see the package documentation.
type Arena struct {
	buffer  []byte
	cursor  uintptr // offset of the next allocation's upper boundary
	backing Backing
	trace   log.Logger

	arenaMask uint16

	countOfAllocations int
	countOfResets      int
	dataBytes          int
	paddingOverhead    int
}

// New creates an arena by requesting one block of exactly opts.Capacity
// bytes, byte-alignment 1, from the backing allocator. This is the only
// backing allocation the arena ever performs; Release returns the block.
//
// Fails with ZeroCapacityError before touching the backing allocator if
// opts.Capacity is zero, and with BackingAllocationError if the backing
// allocator can't supply the block.
func New(opts Options) (*Arena, error) {
	if opts.Capacity == 0 {
		return nil, ZeroCapacityError
	}
	backing := opts.Backing
	if backing == nil {
		backing = HeapBacking{}
	}
	block, allocErr := backing.Alloc(uintptr(opts.Capacity), 1)
	if allocErr != nil {
		return nil, BackingAllocationError{
			Size:      uintptr(opts.Capacity),
			Alignment: 1,
			Cause:     allocErr,
		}
	}
	return &Arena{
		buffer:    block[:opts.Capacity],
		cursor:    uintptr(opts.Capacity),
		backing:   backing,
		trace:     opts.TraceLog,
		arenaMask: uint16(rand.Uint32()) | 1,
	}, nil
}

// MustNew is like New but panics on construction errors.
// Convenient with HeapBacking, which can't fail.
func MustNew(opts Options) *Arena {
	a, err := New(opts)
	if err != nil {
		panic(fmt.Errorf("arena: %w", err))
	}
	return a
}

// Alloc carves size bytes with the requested alignment out of the arena.
//
// It returns an arena.Ptr value, which is basically an offset inside the
// arena block. On success the referenced region is aligned, lies within the
// arena block and is disjoint from every region issued since the last reset.
// On AllocationLimitError the cursor is unchanged and the caller is expected
// to recover, typically by failing its own operation or allocating elsewhere.
//
// size can't be 0 and alignment should be a power of 2 number.
// In case of any violations, panic will be thrown.
func (a *Arena) Alloc(size uintptr, alignment uintptr) (Ptr, error) {
	if size == 0 {
		panic("arena: zero-size allocation")
	}
	if !isPowerOfTwo(alignment) {
		panic(fmt.Errorf("alignment should be power of 2. actual value: %d", alignment))
	}
	a.panicIfReleased()

	base := uintptr(unsafe.Pointer(&a.buffer[0]))
	top := base + a.cursor
	if size > top {
		return Ptr{}, AllocationLimitError
	}
	candidate := (top - size) &^ (alignment - 1)
	if candidate < base {
		return Ptr{}, AllocationLimitError
	}

	a.cursor = candidate - base
	a.countOfAllocations++
	a.dataBytes += int(size)
	a.paddingOverhead += int(top - candidate - size)
	if a.trace != nil {
		_ = a.trace.Log("event", "alloc", "size", size, "alignment", alignment, "offset", a.cursor)
	}
	return Ptr{offset: a.cursor, arenaMask: a.arenaMask}, nil
}

// AllocUnaligned is Alloc with byte alignment.
func (a *Arena) AllocUnaligned(size uintptr) (Ptr, error) {
	return a.Alloc(size, 1)
}

// ToRef converts arena.Ptr to unsafe.Pointer.
//
// It panics if the arena.Ptr was issued by a different arena or before the
// last checked Reset, this is done by comparison of arena mask fields.
//
// We'd suggest calling this method right before using the result pointer to
// eliminate its visibility scope and potentially prevent it's escaping to
// the heap.
func (a *Arena) ToRef(p Ptr) unsafe.Pointer {
	if p.arenaMask != a.arenaMask {
		panic("pointer isn't part of this arena")
	}
	return unsafe.Pointer(&a.buffer[p.offset])
}

// Free releases an individual allocation, which in a bump arena is nothing
// at all: it never fails, never moves the cursor and can be called any
// number of times. Space is reclaimed only by Reset, ResetUnchecked or
// Release. This is the trade-off that keeps Alloc free of bookkeeping.
func (a *Arena) Free(p Ptr) {}

// Grow allocates a fresh region for the new layout and copies
// min(oldSize, newSize) bytes from the old region into it. The old region is
// not reclaimed, as with every allocation in the arena. Fails exactly when
// Alloc fails, leaving the cursor unchanged.
func (a *Arena) Grow(p Ptr, oldSize uintptr, newSize uintptr, alignment uintptr) (Ptr, error) {
	newPtr, allocErr := a.Alloc(newSize, alignment)
	if allocErr != nil {
		return Ptr{}, allocErr
	}
	n := min(oldSize, newSize)
	if n > 0 {
		dst := unsafe.Slice((*byte)(a.ToRef(newPtr)), n)
		src := unsafe.Slice((*byte)(a.ToRef(p)), n)
		copy(dst, src)
	}
	return newPtr, nil
}

// Reset rewinds the cursor to the top of the block, reclaiming the whole
// arena at once and semantically invalidating every allocation issued so
// far. The block itself is untouched, old bytes stay in place until
// overwritten by subsequent allocations.
//
// Reset also rotates the arena mask, so a ToRef call with an arena.Ptr
// issued before the reset panics instead of silently aliasing fresh
// allocations. It can't catch usages of already converted pointers; the
// caller still must not read or write through those.
func (a *Arena) Reset() {
	a.panicIfReleased()
	a.rewind()
	a.arenaMask = (a.arenaMask + 1) | 1
	if a.trace != nil {
		_ = a.trace.Log("event", "reset")
	}
}

// ResetUnchecked rewinds the cursor like Reset but keeps the arena mask, so
// arena.Ptr values issued before the call keep resolving and will silently
// alias memory reused by subsequent allocations.
//
// This is an escape hatch for reuse-in-a-loop patterns where the caller can
// prove, out of band, that no prior allocation is still in use. If that
// proof is wrong, reads observe unrelated fresh data and writes corrupt it.
func (a *Arena) ResetUnchecked() {
	a.panicIfReleased()
	a.rewind()
	if a.trace != nil {
		_ = a.trace.Log("event", "reset_unchecked")
	}
}

func (a *Arena) rewind() {
	a.cursor = uintptr(len(a.buffer))
	a.countOfResets++
	a.dataBytes = 0
	a.paddingOverhead = 0
}

// Release returns the block to the backing allocator and makes the arena
// unusable. Any subsequent operation except Release itself panics.
// Calling Release again is a no-op.
func (a *Arena) Release() {
	if a.buffer == nil {
		return
	}
	if a.trace != nil {
		_ = a.trace.Log("event", "release", "capacity", len(a.buffer))
	}
	a.backing.Release(a.buffer)
	a.buffer = nil
	a.cursor = 0
}

// CurrentOffset returns the current allocation boundary.
// This method can be primarily used to build other allocators on top of the
// arena.
func (a *Arena) CurrentOffset() Offset {
	return Offset{p: Ptr{offset: a.cursor, arenaMask: a.arenaMask}}
}

// Stats provides a snapshot of essential allocation statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		UsedBytes:          len(a.buffer) - int(a.cursor),
		DataBytes:          a.dataBytes,
		PaddingOverhead:    a.paddingOverhead,
		CountOfAllocations: a.countOfAllocations,
		CountOfResets:      a.countOfResets,
	}
}

// Metrics provides a snapshot of current allocation statistics,
// that can be used by end-users or other allocators for introspection.
func (a *Arena) Metrics() Metrics {
	return Metrics{
		Stats:          a.Stats(),
		AvailableBytes: int(a.cursor),
		Capacity:       len(a.buffer),
	}
}

// String provides a string snapshot of the current allocation offset.
func (a *Arena) String() string {
	return fmt.Sprintf(
		"arena{mask: %v cursor: %v capacity: %v}",
		a.arenaMask, a.cursor, len(a.buffer),
	)
}

func (a *Arena) panicIfReleased() {
	if a.buffer == nil {
		panic("arena: use after Release")
	}
}

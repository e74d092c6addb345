package arena

import (
	"fmt"
	"unsafe"

	"github.com/dustin/go-humanize"
)

// Error type used by the library to declare error constants.
type Error string

// Error method that implements error interface.
func (e Error) Error() string {
	return string(e)
}

// ZeroCapacityError returned from New if the requested capacity is zero.
// A zero-capacity arena could never satisfy a single allocation,
// so construction fails before the backing allocator is invoked.
const ZeroCapacityError = Error("arena capacity can't be zero")

// AllocationLimitError returned if the arena can't afford the requested
// allocation. This is the routine failure mode of a fixed-capacity arena
// and is always recoverable by the caller.
const AllocationLimitError = Error("allocation limit")

// AllocationInvalidArgumentError returned if
// you passed an invalid argument to the allocation method.
const AllocationInvalidArgumentError = Error("allocation argument is invalid")

// BackingAllocationError reports that the backing allocator could not supply
// the arena its block. It carries the requested layout and the underlying
// cause, which is reachable through errors.Unwrap.
type BackingAllocationError struct {
	Size      uintptr
	Alignment uintptr
	Cause     error
}

func (e BackingAllocationError) Error() string {
	return fmt.Sprintf(
		"backing allocation of %d bytes with alignment %d failed: %v",
		e.Size, e.Alignment, e.Cause,
	)
}

func (e BackingAllocationError) Unwrap() error {
	return e.Cause
}

// Ptr is a struct, which is basically represents an offset of the allocated
// value inside the arena.
//
// arena.Ptr is a simple struct that should be passed by value and
// is not considered by Go runtime as a legit pointer type.
// So the GC can skip it during the concurrent mark phase.
//
// arena.Ptr can be converted to unsafe.Pointer by using the Arena.ToRef
// method, but we'd suggest to do it right before use to eliminate its
// visibility scope and potentially prevent it's escaping to the heap.
type Ptr struct {
	offset    uintptr
	arenaMask uint16
}

// String provides a string snapshot of the current arena.Ptr.
func (p Ptr) String() string {
	return fmt.Sprintf("{mask: %v offset: %v}", p.arenaMask, p.offset)
}

// Offset is an arena.Ptr that can't be converted to unsafe.Pointer
// or used as any kind of reference.
//
// It marks the current allocation boundary of an arena and can be used to
// pre-calculate padding or to build other allocators on top of the arena.
type Offset struct {
	p Ptr
}

// String provides a string snapshot of the current arena.Offset.
func (o Offset) String() string {
	return o.p.String()
}

// Stats is a snapshot of essential allocation statistics,
// that can be used by end-users or other allocators for introspection.
type Stats struct {
	UsedBytes          int // bytes consumed from the arena, padding included
	DataBytes          int // bytes requested by callers since the last reset
	PaddingOverhead    int // bytes lost to alignment since the last reset
	CountOfAllocations int // successful allocations over the arena lifetime
	CountOfResets      int // resets over the arena lifetime, both variants
}

// String provides a string snapshot of the Stats state.
func (s Stats) String() string {
	return fmt.Sprintf(
		"{UsedBytes: %v DataBytes: %v PaddingOverhead: %v CountOfAllocations: %v CountOfResets: %v}",
		s.UsedBytes, s.DataBytes, s.PaddingOverhead, s.CountOfAllocations, s.CountOfResets,
	)
}

// Metrics is a snapshot of current allocation statistics,
// that can be used by end-users or other allocators for introspection.
type Metrics struct {
	Stats
	AvailableBytes int // bytes still allocatable before AllocationLimitError
	Capacity       int // immutable size of the backing block
}

// String provides a string snapshot of the Metrics state.
func (m Metrics) String() string {
	return fmt.Sprintf(
		"{UsedBytes: %v AvailableBytes: %v Capacity: %v CountOfAllocations: %v CountOfResets: %v}",
		m.UsedBytes, m.AvailableBytes, m.Capacity, m.CountOfAllocations, m.CountOfResets,
	)
}

// HumanString renders the same snapshot with human-readable byte sizes.
func (m Metrics) HumanString() string {
	return fmt.Sprintf(
		"{Used: %v Available: %v Capacity: %v}",
		humanize.IBytes(uint64(m.UsedBytes)),
		humanize.IBytes(uint64(m.AvailableBytes)),
		humanize.IBytes(uint64(m.Capacity)),
	)
}

// Allocator is the allocation capability an Arena exposes to generic
// consumers like Buffer or the Bytes helpers. Free never fails and never
// reclaims memory; only a reset of the whole arena does.
type Allocator interface {
	Alloc(size uintptr, alignment uintptr) (Ptr, error)
	Free(p Ptr)
	Grow(p Ptr, oldSize uintptr, newSize uintptr, alignment uintptr) (Ptr, error)
	ToRef(p Ptr) unsafe.Pointer
	CurrentOffset() Offset
	Metrics() Metrics
}

func isPowerOfTwo(x uintptr) bool {
	return x != 0 && (x&(x-1)) == 0
}

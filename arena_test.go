package arena_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	arena "github.com/memkit/arena"
)

func TestZeroCapacityFailsBeforeBacking(t *testing.T) {
	t.Parallel()

	backing := &countingBacking{target: arena.HeapBacking{}}
	a, err := arena.New(arena.Options{Capacity: 0, Backing: backing})
	require.Nil(t, a)
	require.ErrorIs(t, err, arena.ZeroCapacityError)
	require.Zero(t, backing.allocs, "backing allocator should not be invoked for a zero-capacity arena")
}

func TestMustNewPanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		arena.MustNew(arena.Options{Capacity: 0})
	})
}

func TestBackingFailurePropagates(t *testing.T) {
	t.Parallel()

	cause := arena.Error("no memory for you")
	a, err := arena.New(arena.Options{Capacity: 128, Backing: failingBacking{err: cause}})
	require.Nil(t, a)

	var backingErr arena.BackingAllocationError
	require.ErrorAs(t, err, &backingErr)
	require.EqualValues(t, 128, backingErr.Size)
	require.EqualValues(t, 1, backingErr.Alignment)
	require.ErrorIs(t, err, cause)
}

func TestExactlyOneBackingAllocationPerLifetime(t *testing.T) {
	t.Parallel()

	backing := &countingBacking{target: arena.HeapBacking{}}
	a, err := arena.New(arena.Options{Capacity: 64, Backing: backing})
	require.NoError(t, err)

	_, allocErr := a.Alloc(16, 8)
	require.NoError(t, allocErr)
	a.Reset()
	_, allocErr = a.Alloc(16, 8)
	require.NoError(t, allocErr)
	require.Equal(t, 1, backing.allocs)
	require.Equal(t, 0, backing.releases)

	a.Release()
	require.Equal(t, 1, backing.allocs)
	require.Equal(t, 1, backing.releases)

	// second release is a no-op
	a.Release()
	require.Equal(t, 1, backing.releases)

	require.Panics(t, func() {
		_, _ = a.Alloc(1, 1)
	}, "released arena should refuse to allocate")
}

func TestTwoValuesFitThirdFails(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: uint(2 * unsafe.Sizeof(float32(0)))})

	first, allocErr := arena.AllocValue(a, float32(1.2))
	require.NoError(t, allocErr)
	require.Equal(t, float32(1.2), *first)

	second, allocErr := arena.AllocValue(a, float32(2.4))
	require.NoError(t, allocErr)
	require.Equal(t, float32(2.4), *second)

	usedBefore := a.Metrics().UsedBytes
	third, allocErr := arena.AllocValue(a, float32(4.8))
	require.Nil(t, third)
	require.ErrorIs(t, allocErr, arena.AllocationLimitError)
	require.Equal(t, usedBefore, a.Metrics().UsedBytes, "cursor must stay put on a failed allocation")

	// the earlier values survive the failed attempt
	require.Equal(t, float32(1.2), *first)
	require.Equal(t, float32(2.4), *second)
}

func TestResetRewindsCursorToTheFirstAddress(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: uint(unsafe.Sizeof(float32(0)))})

	first, allocErr := arena.AllocValue(a, float32(1.2))
	require.NoError(t, allocErr)
	firstAddr := uintptr(unsafe.Pointer(first))

	a.Reset()
	require.Zero(t, a.Metrics().UsedBytes)

	second, allocErr := arena.AllocValue(a, float32(2.4))
	require.NoError(t, allocErr)
	require.Equal(t, firstAddr, uintptr(unsafe.Pointer(second)), "reset should fully rewind the cursor")

	// same backing memory, overwritten: the old reference now observes
	// the new value
	require.Equal(t, float32(2.4), *first)
}

func TestResetInvalidatesIssuedPtrs(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 64})
	stalePtr, allocErr := a.Alloc(8, 8)
	require.NoError(t, allocErr)

	a.Reset()
	require.Panics(t, func() {
		_ = a.ToRef(stalePtr)
	}, "ptr issued before a checked reset should not resolve")
}

func TestResetUncheckedAliasesIssuedMemory(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: uint(unsafe.Sizeof(float32(0)))})

	var prevValue float32
	var prevRef *float32
	for idx := 0; idx <= 2; idx++ {
		a.ResetUnchecked()

		newValue := float32(idx)
		newRef, allocErr := arena.AllocValue(a, newValue)
		require.NoError(t, allocErr)
		require.Equal(t, newValue, *newRef)

		if prevRef != nil {
			// the previous iteration's reference aliases the shared
			// backing memory and observes the fresh value
			require.Equal(t, newValue, *prevRef)
			require.NotEqual(t, prevValue, *newRef, "memory should be overwritten, not stale")
		}
		prevValue, prevRef = newValue, newRef
	}
}

func TestResetUncheckedKeepsPtrsResolvable(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 16})
	stalePtr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)

	a.ResetUnchecked()
	freshPtr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)
	require.Equal(t, a.ToRef(freshPtr), a.ToRef(stalePtr), "stale ptr silently aliases the fresh allocation")
}

func TestFreeIsIdempotentNoOp(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 64})
	ptr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)

	offsetBefore := a.CurrentOffset()
	metricsBefore := a.Metrics()
	for i := 0; i < 3; i++ {
		a.Free(ptr)
	}
	require.Equal(t, offsetBefore, a.CurrentOffset(), "free must never move the cursor")
	require.Equal(t, metricsBefore, a.Metrics())

	next, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)
	require.Equal(t,
		uintptr(a.ToRef(ptr))-8, uintptr(a.ToRef(next)),
		"allocation placement must be unaffected by free",
	)
}

func TestGrowPreservesContent(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 64})
	ptr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)

	src := unsafe.Slice((*byte)(a.ToRef(ptr)), 8)
	copy(src, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	grownPtr, growErr := a.Grow(ptr, 8, 16, 1)
	require.NoError(t, growErr)
	grown := unsafe.Slice((*byte)(a.ToRef(grownPtr)), 16)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, grown[:8], "grow must copy the old content")
}

func TestGrowShrinksToMinOfBothSizes(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 64})
	ptr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)
	src := unsafe.Slice((*byte)(a.ToRef(ptr)), 8)
	copy(src, []byte{9, 8, 7, 6, 5, 4, 3, 2})

	shrunkPtr, growErr := a.Grow(ptr, 8, 4, 1)
	require.NoError(t, growErr)
	shrunk := unsafe.Slice((*byte)(a.ToRef(shrunkPtr)), 4)
	require.Equal(t, []byte{9, 8, 7, 6}, shrunk)
}

func TestGrowFailsLikeAlloc(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 16})
	ptr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)

	metricsBefore := a.Metrics()
	_, growErr := a.Grow(ptr, 8, 64, 1)
	require.ErrorIs(t, growErr, arena.AllocationLimitError)
	require.Equal(t, metricsBefore, a.Metrics(), "failed grow must not move the cursor")
}

func TestZeroSizeAllocPanics(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 16})
	require.Panics(t, func() {
		_, _ = a.Alloc(0, 1)
	})
}

func TestNonPowerOfTwoAlignmentPanics(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 16})
	require.Panics(t, func() {
		_, _ = a.Alloc(1, 3)
	})
	require.Panics(t, func() {
		_, _ = a.Alloc(1, 0)
	})
}

func TestForeignPtrPanics(t *testing.T) {
	t.Parallel()

	a := arena.MustNew(arena.Options{Capacity: 16})
	b := arena.MustNew(arena.Options{Capacity: 16})
	ptr, allocErr := a.Alloc(8, 1)
	require.NoError(t, allocErr)

	require.Panics(t, func() {
		_ = b.ToRef(ptr)
	}, "ptr from another arena should not resolve")
}

func TestAlignmentPaddingConsumesCapacity(t *testing.T) {
	t.Parallel()

	// mmap blocks are page aligned, which makes the padding arithmetic
	// deterministic: cursor 16 -> alloc(1,1) lands at base+15 -> alloc(8,8)
	// rounds base+7 down to base, discarding 7 bytes of padding
	a, err := arena.New(arena.Options{Capacity: 16, Backing: arena.MmapBacking{}})
	require.NoError(t, err)
	defer a.Release()

	_, allocErr := a.Alloc(1, 1)
	require.NoError(t, allocErr)
	require.Equal(t, 1, a.Metrics().UsedBytes)

	_, allocErr = a.Alloc(8, 8)
	require.NoError(t, allocErr)
	require.Equal(t, 16, a.Metrics().UsedBytes)
	require.Equal(t, 7, a.Metrics().PaddingOverhead)

	_, allocErr = a.Alloc(1, 1)
	require.ErrorIs(t, allocErr, arena.AllocationLimitError)
}

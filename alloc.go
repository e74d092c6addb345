package arena

import "unsafe"

// AllocValue allocates room for one T inside the arena, with the natural
// size and alignment of T, and copies val into it.
//
// The returned pointer is valid until the arena is reset or released; the
// arena itself must stay reachable while the pointer is in use.
// Zero-sized T panics, same as Arena.Alloc.
func AllocValue[T any](a *Arena, val T) (*T, error) {
	p, allocErr := a.Alloc(unsafe.Sizeof(val), unsafe.Alignof(val))
	if allocErr != nil {
		return nil, allocErr
	}
	ref := (*T)(a.ToRef(p))
	*ref = val
	return ref, nil
}

// AllocSlice allocates a slice of n elements of T inside the arena.
// Element memory is not cleared: after a reset it may hold bytes from
// previous allocations, so initialize before reading.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, AllocationInvalidArgumentError
	}
	var zero T
	p, allocErr := a.Alloc(unsafe.Sizeof(zero)*uintptr(n), unsafe.Alignof(zero))
	if allocErr != nil {
		return nil, allocErr
	}
	return unsafe.Slice((*T)(a.ToRef(p)), n), nil
}

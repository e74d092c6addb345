package arena

import (
	"fmt"
	"unsafe"
)

// Bytes is an analog to []byte, but it represents a byte slice allocated
// inside the arena. arena.Bytes is a simple struct that should be passed by
// value and is not considered by Go runtime as a legit pointer type.
// So the GC can skip it during the concurrent mark phase.
//
// arena.Bytes can be converted to []byte by using the BytesToRef function,
// but we'd suggest to do it right before use to eliminate its visibility
// scope. If you need the data to survive a reset or release of the arena,
// use CopyBytesToHeap or CopyBytesToStringOnHeap.
type Bytes struct {
	data Ptr
	len  uintptr
	cap  uintptr
}

// String provides a string snapshot of the current arena.Bytes header.
func (b Bytes) String() string {
	return fmt.Sprintf("{data: %v len: %v cap: %v}", b.data, b.len, b.cap)
}

// Len returns the length of the arena.Bytes. Direct analog of len([]byte)
func (b Bytes) Len() int {
	return int(b.len)
}

// Cap returns the capacity of the arena.Bytes. Direct analog of cap([]byte)
func (b Bytes) Cap() int {
	return int(b.cap)
}

// SubSlice is an analog to []byte[low:high]
// Returns sub-slice of the arena.Bytes and panics in case of bounds out of
// range.
func (b Bytes) SubSlice(low int, high int) Bytes {
	inBounds := low >= 0 && low <= high && high <= int(b.len)
	if !inBounds {
		panic(fmt.Errorf(
			"runtime error: slice bounds out of range [%d:%d] with length %d",
			low, high, b.len,
		))
	}
	return Bytes{
		data: Ptr{
			offset:    b.data.offset + uintptr(low),
			arenaMask: b.data.arenaMask,
		},
		len: uintptr(high - low),
		cap: b.cap - uintptr(low),
	}
}

// MakeBytes is a direct analog of make([]byte, len)
// that allocates the slice inside the target allocator.
func MakeBytes(alloc Allocator, len uintptr) (Bytes, error) {
	if len == 0 {
		return Bytes{}, nil
	}
	slicePtr, allocErr := alloc.Alloc(len, 1)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	return Bytes{
		data: slicePtr,
		len:  len,
		cap:  len,
	}, nil
}

// MakeBytesWithCapacity is a direct analog of make([]byte, len, cap)
// that allocates the slice inside the target allocator.
func MakeBytesWithCapacity(alloc Allocator, length uintptr, capacity uintptr) (Bytes, error) {
	if capacity < length {
		return Bytes{}, AllocationInvalidArgumentError
	}
	bytes, allocErr := MakeBytes(alloc, capacity)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	bytes.len = length
	return bytes, nil
}

// Append is a direct analog of append([]byte, ...byte).
// If necessary, it moves the slice to a bigger region through Allocator.Grow,
// which preserves the already written prefix.
func Append(alloc Allocator, bytesSlice Bytes, bytesToAppend ...byte) (Bytes, error) {
	target, allocErr := growIfNecessary(alloc, bytesSlice, len(bytesToAppend))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + uintptr(len(bytesToAppend))
	copy(BytesToRef(alloc, target)[bytesSlice.len:], bytesToAppend)
	return target, nil
}

// AppendString appends bytes from the target string to the end of the buffer.
// If necessary, it moves the slice to a bigger region through Allocator.Grow.
func AppendString(alloc Allocator, bytesSlice Bytes, str string) (Bytes, error) {
	target, allocErr := growIfNecessary(alloc, bytesSlice, len(str))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + uintptr(len(str))
	copy(BytesToRef(alloc, target)[bytesSlice.len:], str)
	return target, nil
}

// AppendByte appends one byte to the end of the buffer.
// If necessary, it moves the slice to a bigger region through Allocator.Grow.
func AppendByte(alloc Allocator, bytesSlice Bytes, byteToAppend byte) (Bytes, error) {
	target, allocErr := growIfNecessary(alloc, bytesSlice, 1)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.len = bytesSlice.len + 1
	BytesToRef(alloc, target)[bytesSlice.len] = byteToAppend
	return target, nil
}

// Embed copies the specified bytes into the allocator's arena.
//
// It can be used if you need a full copy for future use but want to hide
// this byte slice from the GC or eliminate excessive heap allocations.
func Embed(alloc Allocator, src []byte) (Bytes, error) {
	result, allocErr := MakeBytes(alloc, uintptr(len(src)))
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	copy(BytesToRef(alloc, result), src)
	return result, nil
}

// EmbedAsBytes copies the specified bytes into the allocator's arena.
func EmbedAsBytes(alloc Allocator, src []byte) ([]byte, error) {
	bytes, allocErr := Embed(alloc, src)
	if allocErr != nil {
		return nil, allocErr
	}
	return BytesToRef(alloc, bytes), nil
}

// EmbedAsString copies the specified bytes into the allocator's arena and
// casts them to string.
func EmbedAsString(alloc Allocator, src []byte) (string, error) {
	bytes, allocErr := Embed(alloc, src)
	if allocErr != nil {
		return "", allocErr
	}
	return BytesToStringRef(alloc, bytes), nil
}

// BytesToRef converts arena.Bytes to []byte,
// but we'd suggest to do it right before use to eliminate its visibility
// scope and potentially prevent it's escaping to the heap.
func BytesToRef(alloc Allocator, bytes Bytes) []byte {
	if bytes.cap == 0 {
		return nil
	}
	ref := (*byte)(alloc.ToRef(bytes.data))
	return unsafe.Slice(ref, bytes.cap)[:bytes.len:bytes.cap]
}

// BytesToStringRef converts arena.Bytes to string,
// but we'd suggest to do it right before use to eliminate its visibility
// scope and potentially prevent it's escaping to the heap.
func BytesToStringRef(alloc Allocator, bytes Bytes) string {
	if bytes.len == 0 {
		return ""
	}
	ref := (*byte)(alloc.ToRef(bytes.data))
	return unsafe.String(ref, bytes.len)
}

// CopyBytesToHeap copies Bytes to the general heap. Can be used if you want
// to pass the data to another goroutine or release the underlying arena
// while keeping the data accessible.
func CopyBytesToHeap(alloc Allocator, bytes Bytes) []byte {
	copyOnHeap := make([]byte, bytes.len)
	copy(copyOnHeap, BytesToRef(alloc, bytes))
	return copyOnHeap
}

// CopyBytesToStringOnHeap copies Bytes to the general heap as a string.
// Can be used if you want to pass the data to another goroutine or release
// the underlying arena while keeping the data accessible.
func CopyBytesToStringOnHeap(alloc Allocator, bytes Bytes) string {
	copyOnHeap := make([]byte, bytes.len)
	copy(copyOnHeap, BytesToRef(alloc, bytes))
	return unsafe.String(unsafe.SliceData(copyOnHeap), len(copyOnHeap))
}

func growIfNecessary(alloc Allocator, bytesSlice Bytes, requiredSize int) (Bytes, error) {
	target := bytesSlice
	availableSize := int(target.cap - target.len)
	if availableSize >= requiredSize {
		return target, nil
	}

	newCap := max(2*(int(target.cap)+requiredSize), 2*int(target.cap))
	if target.cap == 0 {
		return MakeBytesWithCapacity(alloc, target.len, uintptr(newCap))
	}
	// the old region stays where it is, Grow copies the prefix for us
	newPtr, allocErr := alloc.Grow(target.data, target.cap, uintptr(newCap), 1)
	if allocErr != nil {
		return Bytes{}, allocErr
	}
	target.data = newPtr
	target.cap = uintptr(newCap)
	return target, nil
}

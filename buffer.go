package arena

// default arena capacity behind a Buffer created with a nil allocator
const defaultBufferCapacity = 64 * 1024

// Buffer is an analog to bytes.Buffer that assembles its content inside an
// arena. It implements io.Writer, io.StringWriter and io.ByteWriter.
//
// Writes fail with AllocationLimitError once the underlying arena can't fit
// the grown buffer anymore, the content written so far stays intact.
type Buffer struct {
	alloc         Allocator
	currentBuffer Bytes
}

// NewBuffer creates a Buffer on top of the target allocator.
// A nil target is replaced by a dedicated heap-backed arena.
func NewBuffer(target Allocator) *Buffer {
	return &Buffer{alloc: target}
}

func (b *Buffer) init(initSize int) error {
	if b.alloc == nil {
		b.alloc = MustNew(Options{Capacity: defaultBufferCapacity})
	}
	if b.currentBuffer.Cap() == 0 {
		newBuffer, allocErr := MakeBytesWithCapacity(b.alloc, 0, uintptr(initSize))
		if allocErr != nil {
			return allocErr
		}
		b.currentBuffer = newBuffer
	}
	return nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	initErr := b.init(len(p))
	if initErr != nil {
		return 0, initErr
	}
	changedBuffer, allocErr := Append(b.alloc, b.currentBuffer, p...)
	if allocErr != nil {
		return 0, allocErr
	}
	b.currentBuffer = changedBuffer
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (b *Buffer) WriteString(s string) (n int, err error) {
	initErr := b.init(len(s))
	if initErr != nil {
		return 0, initErr
	}
	changedBuffer, allocErr := AppendString(b.alloc, b.currentBuffer, s)
	if allocErr != nil {
		return 0, allocErr
	}
	b.currentBuffer = changedBuffer
	return len(s), nil
}

// WriteByte implements io.ByteWriter.
func (b *Buffer) WriteByte(c byte) error {
	initErr := b.init(1)
	if initErr != nil {
		return initErr
	}
	changedBuffer, allocErr := AppendByte(b.alloc, b.currentBuffer, c)
	if allocErr != nil {
		return allocErr
	}
	b.currentBuffer = changedBuffer
	return nil
}

// Bytes returns the assembled content as a []byte that still points into the
// arena. It is valid until the arena is reset or released.
func (b *Buffer) Bytes() []byte {
	if b.alloc == nil || b.currentBuffer.Len() == 0 {
		return nil
	}
	return BytesToRef(b.alloc, b.currentBuffer)
}

// String returns the assembled content as a string that still points into
// the arena. It is valid until the arena is reset or released.
func (b *Buffer) String() string {
	if b.alloc == nil || b.currentBuffer.Len() == 0 {
		return ""
	}
	return BytesToStringRef(b.alloc, b.currentBuffer)
}

// CopyBytesToHeap moves the assembled content out of the arena to the
// general heap.
func (b *Buffer) CopyBytesToHeap() []byte {
	if b.alloc == nil || b.currentBuffer.Len() == 0 {
		return nil
	}
	return CopyBytesToHeap(b.alloc, b.currentBuffer)
}

// CopyBytesToStringOnHeap moves the assembled content out of the arena to
// the general heap as a string.
func (b *Buffer) CopyBytesToStringOnHeap() string {
	if b.alloc == nil || b.currentBuffer.Len() == 0 {
		return ""
	}
	return CopyBytesToStringOnHeap(b.alloc, b.currentBuffer)
}

// ArenaBytes returns the assembled content as arena.Bytes.
func (b *Buffer) ArenaBytes() Bytes {
	if b.alloc == nil {
		return Bytes{}
	}
	return b.currentBuffer
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return b.currentBuffer.Len()
}

// Cap returns the capacity of the current underlying slice.
func (b *Buffer) Cap() int {
	return b.currentBuffer.Cap()
}

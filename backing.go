package arena

// Backing is the capability the arena draws its single block from.
// Alloc is called exactly once, at arena construction, and Release exactly
// once, when the arena is released. The returned block must stay valid and
// immovable for the whole arena lifetime.
type Backing interface {
	Alloc(size uintptr, alignment uintptr) ([]byte, error)
	Release(block []byte)
}

// HeapBacking supplies the arena block from the Go heap.
// Release is a no-op, the garbage collector reclaims the block once the
// arena drops its reference. This is the default backing and it never fails.
type HeapBacking struct{}

// Alloc implements Backing.
func (HeapBacking) Alloc(size uintptr, alignment uintptr) ([]byte, error) {
	return make([]byte, size), nil
}

// Release implements Backing.
func (HeapBacking) Release(block []byte) {}

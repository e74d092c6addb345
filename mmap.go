package arena

import (
	mmap "github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// MmapBacking supplies the arena block from an anonymous memory mapping
// instead of the Go heap. The block is invisible to the garbage collector
// and is returned to the OS on Release.
//
// Useful for large arenas that would otherwise inflate GC scan work, and for
// making release of the arena memory immediate rather than GC-driven.
type MmapBacking struct{}

// Alloc implements Backing. The kernel rounds the mapping up to whole pages;
// the arena still only uses the requested prefix.
func (MmapBacking) Alloc(size uintptr, alignment uintptr) ([]byte, error) {
	region, mapErr := mmap.MapRegion(nil, int(size), mmap.RDWR, mmap.ANON, 0)
	if mapErr != nil {
		return nil, errors.Wrapf(mapErr, "anonymous mapping of %d bytes", size)
	}
	return region, nil
}

// Release implements Backing and unmaps the block. The block must be the
// exact slice returned by Alloc.
func (MmapBacking) Release(block []byte) {
	region := mmap.MMap(block)
	_ = region.Unmap()
}

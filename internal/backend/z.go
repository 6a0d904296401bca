package backend

import "github.com/dgraph-io/ristretto/z"

const zTag = "allocbench"

// zAllocator uses ristretto's calloc, which is jemalloc when built with
// the jemalloc tag and the Go allocator otherwise.
type zAllocator struct{}

func (zAllocator) Allocate(size int) Handle {
	return z.Calloc(size, zTag)
}

func (zAllocator) Deallocate(h Handle) {
	z.Free(h)
}

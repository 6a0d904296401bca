package backend

import (
	"unsafe"

	"github.com/shivam-909/allocbench/alloc"
)

// manualAllocator serves blocks from an explicit free-list heap.
type manualAllocator struct {
	heap *alloc.Heap
}

func newManualAllocator() *manualAllocator {
	return &manualAllocator{heap: alloc.NewHeap()}
}

func (m *manualAllocator) Allocate(size int) Handle {
	return unsafe.Slice((*byte)(m.heap.Allocate(size)), size)
}

func (m *manualAllocator) Deallocate(h Handle) {
	m.heap.Free(unsafe.Pointer(unsafe.SliceData(h)))
}

// Trim unmaps the heap's chunks if no block is live.
func (m *manualAllocator) Trim() {
	m.heap.Trim()
}

func (m *manualAllocator) Close() error {
	m.heap.Release()
	return nil
}

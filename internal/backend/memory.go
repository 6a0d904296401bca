package backend

import (
	"fmt"

	"modernc.org/memory"
)

// memoryAllocator wraps modernc.org/memory, a malloc/free allocator over
// mmap'd pages.
type memoryAllocator struct {
	a memory.Allocator
}

func (m *memoryAllocator) Allocate(size int) Handle {
	b, err := m.a.Malloc(size)
	if err != nil {
		panic(exhausted(size, err))
	}
	return b
}

func (m *memoryAllocator) Deallocate(h Handle) {
	if err := m.a.Free(h); err != nil {
		panic(fmt.Errorf("backend: memory free: %w", err))
	}
}

func (m *memoryAllocator) Close() error {
	return m.a.Close()
}

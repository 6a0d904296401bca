package alloc

import (
	"os"
	"sync"
	"unsafe"
)

var (
	chunkSize = os.Getpagesize() // typically 4096
	wordSize  = int(unsafe.Sizeof(uintptr(0)))
)

// Block layout & metadata
//
// [HEADER=1 word][PAYLOAD...][FOOTER=1 word]
//
// Header and footer both hold size|flags. For a free block, the payload's
// first two words store the prevFree and nextFree links.
//
// Every chunk starts with a prologue footer and ends with an epilogue
// header, both of size 0 and marked allocated, so neighbour lookups never
// walk off a chunk.
const (
	flagAllocated = 0x1
	flagCached    = 0x2 // parked on a fixed-size list, invisible to coalescing
	flagMask      = 0x7
)

var (
	overhead   = 2 * wordSize  // header + footer
	minPayload = 4 * wordSize  // room for the free links
	minSplit   = 16 * wordSize // leftover worth carving off
)

// fixed-size classes served from their own free lists
var thresholds = [...]int{
	64,
	128,
	256,
	512,
	1024,
	2048,
	4096,
	8192,
}

// Heap is an explicit free-list allocator over mmap'd chunks. It is not
// safe for concurrent use.
type Heap struct {
	free      unsafe.Pointer // head of the general free list
	fixed     [len(thresholds)]unsafe.Pointer
	chunks    [][]byte
	allocated int
}

// NewHeap maps the first chunk and returns an empty heap.
func NewHeap() *Heap {
	h := &Heap{}
	h.extend(0)
	return h
}

func word(p unsafe.Pointer) *uintptr {
	return (*uintptr)(p)
}

func setMd(p unsafe.Pointer, size int, flags uintptr) {
	*word(p) = uintptr(size) | flags
}

func blockSize(h unsafe.Pointer) int {
	return int(*word(h) &^ flagMask)
}

func blockAllocated(h unsafe.Pointer) bool {
	return *word(h)&flagAllocated != 0
}

func blockCached(h unsafe.Pointer) bool {
	return *word(h)&flagCached != 0
}

// Returns pointer to the data area (after header)
func blockPayload(h unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(h, wordSize)
}

// Returns pointer to the footer's metadata
func blockFooter(h unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(h, wordSize+blockSize(h))
}

func setBlock(h unsafe.Pointer, size int, flags uintptr) {
	setMd(h, size, flags)
	setMd(blockFooter(h), size, flags)
}

func blockPrevFree(h unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(blockPayload(h))
}

func blockNextFree(h unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(blockPayload(h), wordSize))
}

func setBlockPrevFree(h unsafe.Pointer, prev unsafe.Pointer) {
	*(*unsafe.Pointer)(blockPayload(h)) = prev
}

func setBlockNextFree(h unsafe.Pointer, next unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Add(blockPayload(h), wordSize)) = next
}

func nextAdjBlock(h unsafe.Pointer) unsafe.Pointer {
	n := unsafe.Add(h, blockSize(h)+overhead)
	if blockSize(n) == 0 {
		// epilogue
		return nil
	}
	return n
}

func prevAdjBlock(h unsafe.Pointer) unsafe.Pointer {
	// The footer of the previous block is right before this header
	footer := unsafe.Add(h, -wordSize)
	size := blockSize(footer)
	if size == 0 {
		// prologue
		return nil
	}
	return unsafe.Add(footer, -(size + wordSize))
}

func pushFree(head *unsafe.Pointer, h unsafe.Pointer) {
	setBlockPrevFree(h, nil)
	setBlockNextFree(h, *head)
	if *head != nil {
		setBlockPrevFree(*head, h)
	}
	*head = h
}

func unlinkFree(head *unsafe.Pointer, h unsafe.Pointer) {
	pf := blockPrevFree(h)
	nf := blockNextFree(h)

	if pf != nil {
		setBlockNextFree(pf, nf)
	} else {
		// h was the head
		*head = nf
	}

	if nf != nil {
		setBlockPrevFree(nf, pf)
	}
}

func alignedSize(size int) int {
	const alignment = 8
	return (size + alignment - 1) & ^(alignment - 1)
}

// thresholdFor returns the fixed class serving a request of asize bytes, or
// -1. A class takes requests within 80% of its size.
func thresholdFor(asize int) int {
	for i, t := range thresholds {
		if asize <= t {
			if asize >= t*4/5 {
				return i
			}
			return -1
		}
	}
	return -1
}

func thresholdIndex(size int) int {
	for i, t := range thresholds {
		if size == t {
			return i
		}
	}
	return -1
}

// extend maps a chunk big enough for a payload of the given size and puts
// its single block on the free list.
func (hp *Heap) extend(payload int) unsafe.Pointer {
	size := payload + 2*overhead // block tags + prologue/epilogue
	if size < chunkSize {
		size = chunkSize
	} else if r := size % chunkSize; r != 0 {
		size += chunkSize - r
	}

	mem := mmap(size)
	base := unsafe.Pointer(unsafe.SliceData(mem))

	setMd(base, 0, flagAllocated)
	h := unsafe.Add(base, wordSize)
	setBlock(h, size-2*overhead, 0)
	setMd(unsafe.Add(base, size-wordSize), 0, flagAllocated)

	hp.chunks = append(hp.chunks, mem)
	pushFree(&hp.free, h)
	return h
}

func (hp *Heap) coalesce(h unsafe.Pointer) {
	// If next block is free, remove it and combine
	if n := nextAdjBlock(h); n != nil && !blockAllocated(n) {
		unlinkFree(&hp.free, n)
		setBlock(h, blockSize(h)+blockSize(n)+overhead, 0)
	}

	// If previous block is free, remove it and combine
	if p := prevAdjBlock(h); p != nil && !blockAllocated(p) {
		unlinkFree(&hp.free, p)
		setBlock(p, blockSize(p)+blockSize(h)+overhead, 0)
		h = p
	}

	pushFree(&hp.free, h)
}

func (hp *Heap) findFit(asize int) unsafe.Pointer {
	for c := hp.free; c != nil; c = blockNextFree(c) {
		if blockSize(c) >= asize {
			return c
		}
	}

	// Else, grow
	return hp.extend(asize)
}

func (hp *Heap) place(h unsafe.Pointer, asize int) {
	unlinkFree(&hp.free, h)

	size := blockSize(h)
	if size < asize+minSplit {
		setBlock(h, size, flagAllocated)
		return
	}

	// Split. The leftover starts after this block's footer.
	setBlock(h, asize, flagAllocated)
	rest := unsafe.Add(h, asize+overhead)
	setBlock(rest, size-asize-overhead, 0)
	hp.coalesce(rest)
}

// Allocate returns a pointer to at least size bytes. It panics if the
// operating system refuses to map more memory.
func (hp *Heap) Allocate(size int) unsafe.Pointer {
	asize := alignedSize(size)
	if asize < minPayload {
		asize = minPayload
	}

	if i := thresholdFor(asize); i >= 0 {
		if h := hp.fixed[i]; h != nil {
			unlinkFree(&hp.fixed[i], h)
			setBlock(h, blockSize(h), flagAllocated)
			hp.allocated++
			return blockPayload(h)
		}
		asize = thresholds[i]
	}

	h := hp.findFit(asize)
	hp.place(h, asize)
	hp.allocated++
	return blockPayload(h)
}

// Free a previously allocated pointer. Freeing nil or an already free
// block does nothing. Free never returns memory to the OS; see Trim.
func (hp *Heap) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	h := unsafe.Add(p, -wordSize)
	if !blockAllocated(h) || blockCached(h) {
		return
	}
	hp.allocated--

	size := blockSize(h)
	if i := thresholdIndex(size); i >= 0 {
		setBlock(h, size, flagAllocated|flagCached)
		pushFree(&hp.fixed[i], h)
	} else {
		setBlock(h, size, 0)
		hp.coalesce(h)
	}
}

// Trim unmaps every chunk and starts over from a single one, but only
// when no block is live. It reports whether it did.
func (hp *Heap) Trim() bool {
	if hp.allocated > 0 {
		return false
	}
	hp.Release()
	hp.extend(0)
	return true
}

// Allocated reports the number of live blocks.
func (hp *Heap) Allocated() int {
	return hp.allocated
}

// Mapped reports the number of bytes currently mapped from the OS.
func (hp *Heap) Mapped() int {
	n := 0
	for _, c := range hp.chunks {
		n += len(c)
	}
	return n
}

// Release unmaps every chunk. Pointers handed out earlier become invalid.
func (hp *Heap) Release() {
	for _, c := range hp.chunks {
		munmap(c)
	}
	hp.chunks = hp.chunks[:0]
	hp.free = nil
	hp.fixed = [len(thresholds)]unsafe.Pointer{}
	hp.allocated = 0
}

var (
	stdOnce sync.Once
	std     *Heap
)

// defaultHeap backs the generic helpers. It is mapped on first use.
func defaultHeap() *Heap {
	stdOnce.Do(func() {
		std = NewHeap()
	})
	return std
}

func Allocate[T any](size int) *T {
	return (*T)(defaultHeap().Allocate(size))
}

func AllocateSlice[T any](length int) []T {
	size := length * int(unsafe.Sizeof(*new(T)))
	return unsafe.Slice(Allocate[T](size), length)
}

func Free[T any](ptr *T) {
	defaultHeap().Free(unsafe.Pointer(ptr))
}

func FreeSlice[T any](slice []T) {
	Free(unsafe.SliceData(slice))
}

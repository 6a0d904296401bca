package alloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func mmap(length int) []byte {
	mem, err := unix.Mmap(
		-1, 0,
		length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		panic(fmt.Errorf("alloc: mmap %d bytes: %w", length, err))
	}
	return mem
}

func munmap(mem []byte) {
	if err := unix.Munmap(mem); err != nil {
		panic(fmt.Errorf("alloc: munmap: %w", err))
	}
}

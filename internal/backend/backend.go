// Package backend abstracts the allocator under measurement.
//
// Exactly one Allocator is chosen per run, by name, from a closed set of
// adapters. Callers must only deallocate live handles they were given;
// double frees and foreign handles are undefined.
package backend

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Handle is a block returned by an Allocator. A nil Handle is the null
// sentinel.
type Handle = []byte

type Allocator interface {
	// Allocate returns a block of at least size bytes, size > 0. It never
	// returns nil; a backend that cannot satisfy the request panics with
	// an error wrapping ErrExhausted.
	Allocate(size int) Handle
	// Deallocate releases a live handle.
	Deallocate(h Handle)
}

var (
	ErrUnknownBackend = errors.New("unknown allocator backend")
	ErrExhausted      = errors.New("allocator exhausted")
)

const (
	Go     = "go"
	Manual = "manual"
	Memory = "memory"
	Z      = "z"
)

// Default is the backend used when none is named.
const Default = Go

var registry = map[string]func() Allocator{
	Go:     func() Allocator { return goAllocator{} },
	Manual: func() Allocator { return newManualAllocator() },
	Memory: func() Allocator { return new(memoryAllocator) },
	Z:      func() Allocator { return zAllocator{} },
}

// Names lists the known backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check reports whether name is a known backend. The empty name means
// Default.
func Check(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("%w: %q (known: %v)", ErrUnknownBackend, name, Names())
	}
	return nil
}

// New builds the named backend.
func New(name string) (Allocator, error) {
	if err := Check(name); err != nil {
		return nil, err
	}
	if name == "" {
		name = Default
	}
	return registry[name](), nil
}

// Trimmer is implemented by backends that can hand idle memory back to the
// OS once nothing is live.
type Trimmer interface {
	Trim()
}

// Trim gives a the chance to release idle memory. Callers must not call it
// inside a measured region.
func Trim(a Allocator) {
	if t, ok := a.(Trimmer); ok {
		t.Trim()
	}
}

// Close releases the resources held by a, if it holds any.
func Close(a Allocator) error {
	if c, ok := a.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func exhausted(size int, err error) error {
	return fmt.Errorf("%w: %d bytes: %w", ErrExhausted, size, err)
}

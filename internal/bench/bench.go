// Package bench times an allocator under fixed-size and mixed workloads.
//
// Every figure is an average in counter ticks, computed by integer
// division. Nothing outside the measured loop runs between the two clock
// reads; in particular nothing is logged there.
package bench

import (
	"fmt"
	"math/rand/v2"

	"github.com/shivam-909/allocbench/internal/backend"
	"github.com/shivam-909/allocbench/internal/cycles"
	"github.com/shivam-909/allocbench/internal/workload"
)

// FixedBatch is the number of blocks FixedSize allocates per run.
const FixedBatch = 64

// FixedSize allocates FixedBatch blocks of size bytes and returns the
// average cost of one allocation. Freeing the batch is not timed.
func FixedSize(a backend.Allocator, clock cycles.Clock, size int) uint64 {
	if size <= 0 {
		panic(fmt.Sprintf("bench: block size must be positive, got %d", size))
	}

	var handles [FixedBatch]backend.Handle

	t0 := clock()
	for i := range handles {
		handles[i] = a.Allocate(size)
	}
	t1 := clock()

	for i := range handles {
		a.Deallocate(handles[i])
		handles[i] = nil
	}
	backend.Trim(a)
	return (t1 - t0) / FixedBatch
}

// Mixed generates a workload of allocCount allocations and returns the
// average cost of one action while executing it.
func Mixed(a backend.Allocator, clock cycles.Clock, rng *rand.Rand, allocCount int) uint64 {
	return Execute(a, clock, workload.Generate(rng, allocCount))
}

// Execute runs actions against a and returns the average cost of one
// action. Deallocate actions refer to allocations by issue order. The
// backend is trimmed after the second clock read, never during the run.
//
// Execute panics on an empty sequence, and on a deallocation of a slot
// that was never filled or was already freed: the sequence is broken and
// the measurement meaningless.
func Execute(a backend.Allocator, clock cycles.Clock, actions []workload.Action) uint64 {
	if len(actions) == 0 {
		panic("bench: empty action sequence")
	}

	allocs := 0
	for _, act := range actions {
		if act.Alloc {
			allocs++
		}
	}
	handles := make([]backend.Handle, allocs)
	n := 0

	t0 := clock()
	for _, act := range actions {
		if act.Alloc {
			handles[n] = a.Allocate(act.Value)
			n++
			continue
		}
		if act.Value < 0 || act.Value >= n || handles[act.Value] == nil {
			panic(fmt.Sprintf("bench: %v targets a slot that is not live", act))
		}
		a.Deallocate(handles[act.Value])
		handles[act.Value] = nil
	}
	t1 := clock()

	clear(handles)
	backend.Trim(a)
	return (t1 - t0) / uint64(len(actions))
}

// Package workload synthesizes allocate/deallocate sequences that churn an
// allocator's free lists across a fixed palette of size classes.
package workload

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Sizes is the palette of size classes, in bytes, drawn from uniformly.
var Sizes = [...]int{8, 40, 96, 140, 256, 1000, 4096, 20000}

// Action is one step of a workload: allocate Value bytes, or deallocate the
// allocation issued Value-th in the sequence.
type Action struct {
	Alloc bool
	Value int
}

func Allocate(size int) Action {
	return Action{Alloc: true, Value: size}
}

func Deallocate(slot int) Action {
	return Action{Value: slot}
}

func (a Action) String() string {
	if a.Alloc {
		return fmt.Sprintf("alloc(%d)", a.Value)
	}
	return fmt.Sprintf("free(#%d)", a.Value)
}

// NewRand returns a PCG generator seeded with (seed, seed).
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate builds a mixed workload of allocCount allocations, each freed
// exactly once, 2*allocCount actions in all.
//
// The first allocCount/4 actions only allocate, seeding a live pool. Each
// later allocation is followed by the release of a uniformly chosen live
// allocation, so the pool stays the same size. Survivors are released last,
// in live-table order. Within an iteration the size is drawn before the
// victim; a given rng state always yields the same sequence.
//
// Generate panics if allocCount is not positive.
func Generate(rng *rand.Rand, allocCount int) []Action {
	if allocCount <= 0 {
		panic(fmt.Sprintf("workload: alloc count must be positive, got %d", allocCount))
	}

	actions := make([]Action, 0, 2*allocCount)
	live := make([]int, 0, allocCount)
	next := 0

	initial := allocCount / 4
	for i := 0; i < initial; i++ {
		actions = append(actions, Allocate(Sizes[rng.IntN(len(Sizes))]))
		live = append(live, next)
		next++
	}

	for i := 0; i < allocCount-initial; i++ {
		actions = append(actions, Allocate(Sizes[rng.IntN(len(Sizes))]))
		live = append(live, next)
		next++

		k := rng.IntN(len(live))
		actions = append(actions, Deallocate(live[k]))
		live = slices.Delete(live, k, k+1)
	}

	if len(live) != initial {
		panic(fmt.Sprintf("workload: %d survivors, want %d", len(live), initial))
	}
	for _, slot := range live {
		actions = append(actions, Deallocate(slot))
	}
	return actions
}

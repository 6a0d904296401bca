package bench

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/shivam-909/allocbench/internal/backend"
	"github.com/shivam-909/allocbench/internal/cycles"
	"github.com/shivam-909/allocbench/internal/workload"
)

// recorder is an allocator that charges a fixed number of ticks per call
// against its own clock and checks the handles it is given back.
type recorder struct {
	t *testing.T

	ticks      uint64
	allocCost  uint64
	freeCost   uint64
	live       map[*byte]int
	allocSizes []int
	frees      int
	peak       int
	trims      int
}

func newRecorder(t *testing.T, allocCost, freeCost uint64) *recorder {
	return &recorder{
		t:         t,
		allocCost: allocCost,
		freeCost:  freeCost,
		live:      make(map[*byte]int),
	}
}

func (r *recorder) clock() cycles.Clock {
	return func() uint64 { return r.ticks }
}

func (r *recorder) Allocate(size int) backend.Handle {
	r.ticks += r.allocCost
	h := make([]byte, size)
	p := unsafe.SliceData(h)
	_, dup := r.live[p]
	require.False(r.t, dup, "handle handed out twice")
	r.live[p] = size
	r.allocSizes = append(r.allocSizes, size)
	r.peak = max(r.peak, len(r.live))
	return h
}

func (r *recorder) Deallocate(h backend.Handle) {
	r.ticks += r.freeCost
	p := unsafe.SliceData(h)
	_, ok := r.live[p]
	require.True(r.t, ok, "free of a handle that is not live")
	delete(r.live, p)
	r.frees++
}

// Trim is expensive on purpose: it must land outside the timed window.
func (r *recorder) Trim() {
	r.ticks += 1 << 20
	require.Empty(r.t, r.live, "trimmed with live handles")
	r.trims++
}

func TestFixedSize(t *testing.T) {
	r := newRecorder(t, 30, 1000)
	got := FixedSize(r, r.clock(), 8)

	require.Equal(t, uint64(30), got)
	require.Len(t, r.allocSizes, FixedBatch)
	for _, size := range r.allocSizes {
		require.Equal(t, 8, size)
	}
	require.Equal(t, FixedBatch, r.frees)
	require.Equal(t, FixedBatch, r.peak)
	require.Empty(t, r.live)
	require.Equal(t, 1, r.trims)
}

func TestFixedSizeBadSize(t *testing.T) {
	r := newRecorder(t, 1, 1)
	require.Panics(t, func() { FixedSize(r, r.clock(), 0) })
}

func TestMixed(t *testing.T) {
	for _, n := range []int{1, 16, 128, 1000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			r := newRecorder(t, 40, 20)
			got := Mixed(r, r.clock(), workload.NewRand(1), n)

			require.Equal(t, uint64(30), got)
			require.Len(t, r.allocSizes, n)
			require.Equal(t, n, r.frees)
			require.Empty(t, r.live)
			require.LessOrEqual(t, r.peak, n/4+1)
			require.Equal(t, 1, r.trims)
		})
	}
}

func TestMixedMatchesSequence(t *testing.T) {
	actions := workload.Generate(workload.NewRand(99), 128)
	var sizes []int
	for _, a := range actions {
		if a.Alloc {
			sizes = append(sizes, a.Value)
		}
	}

	r := newRecorder(t, 1, 1)
	Mixed(r, r.clock(), workload.NewRand(99), 128)
	require.Equal(t, sizes, r.allocSizes)
}

func TestExecuteDoubleFree(t *testing.T) {
	r := newRecorder(t, 1, 1)
	actions := []workload.Action{
		workload.Allocate(8),
		workload.Deallocate(0),
		workload.Deallocate(0),
	}
	require.Panics(t, func() { Execute(r, r.clock(), actions) })
}

func TestExecuteFreeBeforeAlloc(t *testing.T) {
	r := newRecorder(t, 1, 1)
	actions := []workload.Action{
		workload.Deallocate(0),
		workload.Allocate(8),
	}
	require.Panics(t, func() { Execute(r, r.clock(), actions) })
}

func TestExecuteEmpty(t *testing.T) {
	r := newRecorder(t, 1, 1)
	require.Panics(t, func() { Execute(r, r.clock(), nil) })
}

func TestBackendsEndToEnd(t *testing.T) {
	for _, name := range backend.Names() {
		t.Run(name, func(t *testing.T) {
			a, err := backend.New(name)
			require.NoError(t, err)
			tr := backend.NewTracking(a)
			defer tr.Close()

			FixedSize(tr, cycles.Now, 240)
			require.Zero(t, tr.Live())
			Mixed(tr, cycles.Now, workload.NewRand(1), 1000)
			require.Zero(t, tr.Live())
			require.Equal(t, uint64(FixedBatch+1000), tr.Stats().Allocs)
		})
	}
}

func BenchmarkMixed(b *testing.B) {
	for _, name := range backend.Names() {
		b.Run(name, func(b *testing.B) {
			a, err := backend.New(name)
			require.NoError(b, err)
			defer backend.Close(a)
			actions := workload.Generate(workload.NewRand(1), 10000)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Execute(a, cycles.Now, actions)
			}
		})
	}
}

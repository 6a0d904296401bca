package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counts = []int{1, 2, 3, 4, 5, 16, 128, 1000, 10000}

func TestGenerateLength(t *testing.T) {
	for _, n := range counts {
		actions := Generate(NewRand(7), n)
		s := Summarize(actions)
		require.Len(t, actions, 2*n)
		require.Equal(t, n, s.Allocs)
		require.Equal(t, n, s.Frees)
	}
}

func TestGenerateValid(t *testing.T) {
	for _, n := range counts {
		for seed := uint64(0); seed < 8; seed++ {
			require.NoError(t, Validate(Generate(NewRand(seed), n)), "n=%d seed=%d", n, seed)
		}
	}
}

func TestGenerateLiveNeverNegative(t *testing.T) {
	actions := Generate(NewRand(3), 1000)
	allocs, frees := 0, 0
	for _, a := range actions {
		if a.Alloc {
			allocs++
		} else {
			frees++
		}
		require.GreaterOrEqual(t, allocs, frees)
	}
}

func TestGenerateSteadyState(t *testing.T) {
	const n = 1000
	initial := n / 4
	actions := Generate(NewRand(11), n)

	live := 0
	for i, a := range actions[:2*n-initial] {
		if a.Alloc {
			live++
		} else {
			live--
		}
		if i >= initial {
			require.GreaterOrEqual(t, live, initial, "action %d", i)
			require.LessOrEqual(t, live, initial+1, "action %d", i)
		}
	}
	require.Equal(t, initial, live)
	require.Equal(t, initial+1, Summarize(actions).PeakLive)
}

func TestGenerateSixteen(t *testing.T) {
	actions := Generate(NewRand(1), 16)
	require.Len(t, actions, 32)

	// ramp-up
	for i := 0; i < 4; i++ {
		require.True(t, actions[i].Alloc, "action %d", i)
	}
	// churn
	for i := 0; i < 12; i++ {
		require.True(t, actions[4+2*i].Alloc)
		require.False(t, actions[5+2*i].Alloc)
	}
	// survivors
	for i := 28; i < 32; i++ {
		require.False(t, actions[i].Alloc, "action %d", i)
	}
}

func TestGenerateSurvivorOrder(t *testing.T) {
	actions := Generate(NewRand(5), 100)
	tail := actions[len(actions)-25:]
	for i := 1; i < len(tail); i++ {
		// removals keep the live table in issue order
		assert.Less(t, tail[i-1].Value, tail[i].Value)
	}
}

func TestGenerateSizes(t *testing.T) {
	palette := map[int]bool{}
	for _, s := range Sizes {
		palette[s] = true
	}
	seen := map[int]bool{}
	for _, a := range Generate(NewRand(9), 10000) {
		if a.Alloc {
			require.True(t, palette[a.Value], "size %d", a.Value)
			seen[a.Value] = true
		}
	}
	assert.Len(t, seen, len(Sizes))
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(NewRand(42), 10000)
	b := Generate(NewRand(42), 10000)
	require.Equal(t, a, b)

	c := Generate(NewRand(43), 10000)
	require.NotEqual(t, a, c)
}

func TestGenerateNonPositive(t *testing.T) {
	require.Panics(t, func() { Generate(NewRand(1), 0) })
	require.Panics(t, func() { Generate(NewRand(1), -3) })
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
	}{
		{"free before alloc", []Action{Deallocate(0), Allocate(8)}},
		{"double free", []Action{Allocate(8), Allocate(8), Deallocate(0), Deallocate(0), Deallocate(1)}},
		{"leak", []Action{Allocate(8), Allocate(8), Deallocate(1)}},
		{"zero size", []Action{Allocate(0), Deallocate(0)}},
		{"negative slot", []Action{Allocate(8), Deallocate(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tt.actions), ErrInvalidSequence)
		})
	}
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "alloc(96)", Allocate(96).String())
	assert.Equal(t, "free(#3)", Deallocate(3).String())
}

package driver

import (
	"errors"
	"fmt"

	"github.com/shivam-909/allocbench/internal/backend"
)

var ErrInvalidParam = errors.New("invalid benchmark parameter")

// Config selects the backend and the parameter sets to run.
type Config struct {
	Backend     string
	FixedSizes  []int
	MixedCounts []int
	// Seed feeds the workload generator. Zero picks one from the clock.
	Seed uint64
	// Verify wraps the backend in a tracker and fails a run that leaves
	// allocations behind.
	Verify bool
}

func DefaultConfig() Config {
	return Config{
		Backend:     backend.Default,
		FixedSizes:  []int{8, 96, 240},
		MixedCounts: []int{16, 128, 1000, 10000, 100000},
		Seed:        1,
	}
}

func (c Config) Validate() error {
	if err := backend.Check(c.Backend); err != nil {
		return err
	}
	for _, n := range c.FixedSizes {
		if n <= 0 {
			return fmt.Errorf("%w: block size %d", ErrInvalidParam, n)
		}
	}
	for _, n := range c.MixedCounts {
		if n <= 0 {
			return fmt.Errorf("%w: alloc count %d", ErrInvalidParam, n)
		}
	}
	return nil
}

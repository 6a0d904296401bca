package workload

import (
	"errors"
	"fmt"
)

var ErrInvalidSequence = errors.New("invalid action sequence")

// Validate checks that every allocation in actions is released exactly
// once, after it was made, and that sizes are positive.
func Validate(actions []Action) error {
	var (
		issued int
		freed  = make(map[int]struct{})
	)
	for i, a := range actions {
		if a.Alloc {
			if a.Value <= 0 {
				return fmt.Errorf("%w: action %d allocates %d bytes", ErrInvalidSequence, i, a.Value)
			}
			issued++
			continue
		}
		if a.Value < 0 || a.Value >= issued {
			return fmt.Errorf("%w: action %d frees #%d before it was allocated", ErrInvalidSequence, i, a.Value)
		}
		if _, ok := freed[a.Value]; ok {
			return fmt.Errorf("%w: action %d frees #%d twice", ErrInvalidSequence, i, a.Value)
		}
		freed[a.Value] = struct{}{}
	}
	if len(freed) != issued {
		return fmt.Errorf("%w: %d of %d allocations never freed", ErrInvalidSequence, issued-len(freed), issued)
	}
	return nil
}

// Summary describes the shape of a sequence.
type Summary struct {
	Allocs   int
	Frees    int
	PeakLive int
	Bytes    int // total requested
}

func Summarize(actions []Action) Summary {
	var s Summary
	live := 0
	for _, a := range actions {
		if a.Alloc {
			s.Allocs++
			s.Bytes += a.Value
			live++
			s.PeakLive = max(s.PeakLive, live)
		} else {
			s.Frees++
			live--
		}
	}
	return s
}

// Package cycles reads a monotonic hardware cycle counter.
//
// On amd64 the counter is the time-stamp counter read with RDTSCP. Other
// architectures fall back to the runtime's monotonic nanosecond clock, so
// costs below its resolution read as zero.
package cycles

// Clock returns the current counter value. Benchmarks take a Clock so a
// deterministic one can stand in for the hardware counter.
type Clock func() uint64

// Hardware is the Clock backed by Now.
var Hardware Clock = Now

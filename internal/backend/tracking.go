package backend

import "fmt"

// TrackingStats is a snapshot of a Tracking allocator's counters.
type TrackingStats struct {
	Allocs    uint64
	Frees     uint64
	Live      int
	LiveBytes int
	PeakLive  int
}

// Tracking counts the traffic flowing into another Allocator. It is not
// safe for concurrent use.
type Tracking struct {
	upstream Allocator
	stats    TrackingStats
}

var _ Allocator = new(Tracking)

func NewTracking(upstream Allocator) *Tracking {
	return &Tracking{upstream: upstream}
}

func (t *Tracking) Allocate(size int) Handle {
	h := t.upstream.Allocate(size)
	if len(h) < size {
		panic(fmt.Sprintf("backend: asked for %d bytes, got %d", size, len(h)))
	}
	t.stats.Allocs++
	t.stats.Live++
	t.stats.LiveBytes += len(h)
	if t.stats.Live > t.stats.PeakLive {
		t.stats.PeakLive = t.stats.Live
	}
	return h
}

func (t *Tracking) Deallocate(h Handle) {
	t.stats.Frees++
	t.stats.Live--
	t.stats.LiveBytes -= len(h)
	t.upstream.Deallocate(h)
}

// Stats returns the counters accumulated since the last Reset.
func (t *Tracking) Stats() TrackingStats {
	return t.stats
}

// Live reports outstanding allocations.
func (t *Tracking) Live() int {
	return t.stats.Live
}

// Reset zeroes the counters. Live allocations made before the reset are
// no longer accounted for.
func (t *Tracking) Reset() {
	t.stats = TrackingStats{}
}

func (t *Tracking) Trim() {
	Trim(t.upstream)
}

func (t *Tracking) Close() error {
	return Close(t.upstream)
}

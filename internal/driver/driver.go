// Package driver runs the benchmark parameter sets and prints one result
// line per run.
package driver

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/shivam-909/allocbench/internal/backend"
	"github.com/shivam-909/allocbench/internal/bench"
	"github.com/shivam-909/allocbench/internal/cycles"
	"github.com/shivam-909/allocbench/internal/logutil"
	"github.com/shivam-909/allocbench/internal/workload"
)

const (
	FixedMetric = "t_alloc_size"
	MixedMetric = "t_alloc_dealloc_count"
)

// Result is the outcome of one benchmark run.
type Result struct {
	Metric string
	Param  int
	Cycles uint64
}

func (r Result) String() string {
	return fmt.Sprintf("%s_%d = %d", r.Metric, r.Param, r.Cycles)
}

// Run executes every parameter set in cfg, fixed sizes first, writing one
// line per run to w. The clock defaults to the hardware counter.
func Run(cfg Config, w io.Writer) error {
	return run(cfg, cycles.Hardware, w)
}

func run(cfg Config, clock cycles.Clock, w io.Writer) (err error) {
	if err := cfg.Validate(); err != nil {
		return err
	}

	name := cfg.Backend
	if name == "" {
		name = backend.Default
	}
	a, err := backend.New(name)
	if err != nil {
		return err
	}
	var tracker *backend.Tracking
	if cfg.Verify {
		tracker = backend.NewTracking(a)
		a = tracker
	}
	defer func() {
		if cerr := backend.Close(a); cerr != nil && err == nil {
			err = fmt.Errorf("close backend %s: %w", name, cerr)
		}
	}()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := workload.NewRand(seed)

	logutil.Info("starting",
		zap.String("backend", name),
		zap.String("counter", cycles.Source()),
		zap.Uint64("seed", seed),
		zap.Bool("verify", cfg.Verify),
	)

	emit := func(r Result) error {
		if tracker != nil {
			stats := tracker.Stats()
			if stats.Live != 0 {
				return fmt.Errorf("%s_%d left %d allocations live", r.Metric, r.Param, stats.Live)
			}
			logutil.Debug("run stats",
				zap.String("run", r.Metric),
				zap.Int("param", r.Param),
				zap.Uint64("allocs", stats.Allocs),
				zap.Int("peak live", stats.PeakLive),
			)
			tracker.Reset()
		}
		_, err := fmt.Fprintln(w, r)
		return err
	}

	for _, size := range cfg.FixedSizes {
		r := Result{FixedMetric, size, bench.FixedSize(a, clock, size)}
		if err := emit(r); err != nil {
			return err
		}
	}

	for _, n := range cfg.MixedCounts {
		actions := workload.Generate(rng, n)
		if ce := logutil.GetGlobalLogger().Check(zap.DebugLevel, "workload"); ce != nil {
			s := workload.Summarize(actions)
			ce.Write(
				zap.Int("alloc count", n),
				zap.Int("actions", len(actions)),
				zap.Int("peak live", s.PeakLive),
				zap.Int("bytes", s.Bytes),
			)
		}
		if cfg.Verify {
			if err := workload.Validate(actions); err != nil {
				return err
			}
		}
		r := Result{MixedMetric, n, bench.Execute(a, clock, actions)}
		if err := emit(r); err != nil {
			return err
		}
	}
	return nil
}

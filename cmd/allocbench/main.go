// Command allocbench measures the per-call cycle cost of an allocator
// backend under fixed-size and mixed workloads.
//
// With no flags it runs every parameter set against the default backend
// and prints one "<metric>_<param> = <cycles>" line per run.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/shivam-909/allocbench/internal/backend"
	"github.com/shivam-909/allocbench/internal/driver"
	"github.com/shivam-909/allocbench/internal/logutil"
)

func main() {
	cfg := driver.DefaultConfig()
	logCfg := logutil.DefaultConfig()
	logCfg.Level = "warn"

	flag.StringVar(&cfg.Backend, "backend", cfg.Backend,
		fmt.Sprintf("allocator backend (%s)", strings.Join(backend.Names(), ", ")))
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "workload seed, 0 picks one from the clock")
	flag.BoolVar(&cfg.Verify, "verify", cfg.Verify, "check every run frees what it allocates")
	prof := flag.String("profile", "off", "write a profile: cpu, mem or off")
	flag.StringVar(&logCfg.Level, "log-level", logCfg.Level, "log level")
	flag.StringVar(&logCfg.Format, "log-format", logCfg.Format, "log format: console or json")
	flag.StringVar(&logCfg.Filename, "log-file", "", "log to this file instead of stderr")
	flag.Parse()

	if _, err := logutil.SetupLogger(logCfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logutil.GetGlobalLogger().Sync()

	switch *prof {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "off":
	default:
		logutil.Fatal("unknown profile mode", zap.String("profile", *prof))
	}

	if err := driver.Run(cfg, os.Stdout); err != nil {
		logutil.Fatal("benchmark failed", zap.Error(err))
	}
}

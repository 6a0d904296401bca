// Command manual runs every benchmark against the explicit free-list heap.
package main

import (
	"os"

	"github.com/shivam-909/allocbench/internal/backend"
	"github.com/shivam-909/allocbench/internal/driver"
)

func main() {
	cfg := driver.DefaultConfig()
	cfg.Backend = backend.Manual

	if err := driver.Run(cfg, os.Stdout); err != nil {
		panic(err)
	}
}

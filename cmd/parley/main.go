package main

import (
	"github.com/Paintersrp/parley/internal/cli"
	"github.com/Paintersrp/parley/internal/metrics"
	"github.com/Paintersrp/parley/worker"
)

func main() {
	// Must run first: when this process is a spawned worker child, Init
	// executes it and never returns.
	worker.Init()

	metrics.EmitBuildInfo()
	cli.Execute()
}

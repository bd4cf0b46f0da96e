// The phoneworth binary is the command-line interface to the valuation
// models, the launch price registry, and the HTTP service.
package main

import (
	"os"

	"github.com/tradeinlabs/phoneworth/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

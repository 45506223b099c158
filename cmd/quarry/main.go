// Command quarry builds, checks and runs model-aware queries.
package main

import (
	"os"

	"github.com/roach88/quarry/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}

package main

import (
	"os"

	"github.com/pipeforge/scout/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

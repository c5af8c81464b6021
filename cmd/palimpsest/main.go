// Package main is the entry point for the palimpsest CLI.
package main

import (
	"os"

	"github.com/mrz1836/palimpsest/internal/cli"
)

// Populated via -ldflags at release time.
//
//nolint:gochecknoglobals // build-time injection
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersionInfo(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sdejongh/imdirdiff/internal/cli"
	"github.com/sdejongh/imdirdiff/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.BuildDate = version, commit, date

	if err := cli.NewRootCommand().Execute(); err != nil {
		var status *cli.StatusError
		if errors.As(err, &status) {
			os.Exit(status.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(models.StatusFailed.ExitCode())
	}
}

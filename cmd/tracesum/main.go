// Command tracesum builds and analyzes RISC-V execution trace summaries.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/tracesum/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; only flag and usage errors
		// arrive here unprinted.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

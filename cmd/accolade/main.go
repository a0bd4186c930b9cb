// Command accolade runs the achievement registry CLI and HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/accolade/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "accolade:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

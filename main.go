// Command venvstat reports the on-disk footprint of installed Python packages
// across the global installation and nearby virtual environments.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idelchi/venvstat/internal/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New(version).Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) //nolint:gocritic // Standard shell convention for SIGINT
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1) //nolint:gocritic // cancel is a no-op at this point
	}
}

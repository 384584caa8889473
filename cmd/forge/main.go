// Command forge is a general purpose systems toolkit: task runner, version
// algebra and content hashing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cinderforge/forge/internal/cli/cmd"
	"github.com/fatih/color"
)

func main() {
	if err := run(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: ")
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	return cmd.BuildRootCmd().ExecuteContext(ctx)
}

// Package cmd implements forge's CLI command tree.
package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // forge's version, set at compile time by ldflags
	commit  = ""     // forge's commit hash, set at compile time by ldflags

	headerStyle = color.New(color.Bold, color.Underline)
)

// BuildRootCmd builds and returns forge's root command, with every
// subcommand attached.
func BuildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forge",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "A general purpose systems toolkit: task runner, version algebra and content hashing",
		Long: heredoc.Doc(`

		forge is a general purpose systems toolkit.

		At its core it's a task runner: it reads a forgefile, builds a
		dependency graph from the tasks you ask for, and runs that graph
		through a work-stealing executor, skipping any task whose file
		dependencies haven't changed since the last run.

		It also exposes its version algebra and content hashing
		primitives directly, for use outside of a forgefile.
		`),
		Example: heredoc.Doc(`

		# Run the 'build' and 'test' tasks
		$ forge run build test

		# Bump the minor component of a version (prints 1.3.0)
		$ forge version bump 1.2.3 minor

		# Check whether a version satisfies a range
		$ forge range contains "^1.2.3" 1.4.0

		# Hash a set of files
		$ forge hash go.mod go.sum
		`),
	}

	root.AddCommand(
		buildRunCmd(),
		buildVersionCmd(),
		buildRangeCmd(),
		buildHashCmd(),
		buildLintCmd(),
	)

	root.SetUsageTemplate(usageTemplate)
	root.SetVersionTemplate(fmt.Sprintf(
		"%s %s\n%s %s\n",
		headerStyle.Sprint("Version:"), version,
		headerStyle.Sprint("Commit:"), commit,
	))

	return root
}

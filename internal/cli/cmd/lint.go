package cmd

import (
	"fmt"
	"os"

	"github.com/cinderforge/forge/internal/forgefile/parser"
	"github.com/cinderforge/forge/internal/logger"
	"github.com/spf13/cobra"
)

func buildLintCmd() *cobra.Command {
	var (
		write         bool
		forgefilePath string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Parse a forgefile and print it back in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(write, forgefilePath)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&write, "write", "w", false, "Rewrite the forgefile in place instead of printing to stdout.")
	flags.StringVar(&forgefilePath, "forgefile", "", "Path to the forgefile (defaults to searching upward from $CWD).")
	return cmd
}

func runLint(write bool, forgefilePath string) error {
	log, err := logger.NewZap(false)
	if err != nil {
		return fmt.Errorf("forge lint: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	path, err := resolveForgefilePath(log, forgefilePath)
	if err != nil {
		return fmt.Errorf("forge lint: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("forge lint: %w", err)
	}

	tree, err := parser.New(string(raw)).Parse()
	if err != nil {
		return fmt.Errorf("forge lint: %s: %w", path, err)
	}

	formatted := tree.String()

	if !write {
		fmt.Print(formatted)
		return nil
	}
	if formatted == string(raw) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("forge lint: %w", err)
	}
	if err := os.WriteFile(path, []byte(formatted), info.Mode()); err != nil {
		return fmt.Errorf("forge lint: %w", err)
	}
	return nil
}


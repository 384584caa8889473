package cmd

import (
	"fmt"

	"github.com/cinderforge/forge/internal/hash"
	"github.com/spf13/cobra"
)

func buildHashCmd() *cobra.Command {
	var blake2b bool

	cmd := &cobra.Command{
		Use:   "hash <files>...",
		Short: "Fold a set of files into a single content digest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := hash.FileSet{Blake2b: blake2b}
			sum, err := set.Hash(args)
			if err != nil {
				return fmt.Errorf("forge hash: %w", err)
			}
			fmt.Println(sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&blake2b, "blake2b", false, "Hash each file with BLAKE2b-512 instead of SHA-256 before folding.")
	return cmd
}

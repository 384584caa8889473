package cmd

import (
	"fmt"

	semver "github.com/cinderforge/forge/internal/version"
	"github.com/spf13/cobra"
)

func buildVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Parse, format and bump versions",
	}
	cmd.AddCommand(buildVersionShowCmd(), buildVersionBumpCmd())
	return cmd
}

func buildVersionShowCmd() *cobra.Command {
	var showSemver bool
	cmd := &cobra.Command{
		Use:   "show <version>",
		Short: "Parse a version string and print its components",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.Parse(args[0])
			if err != nil {
				return fmt.Errorf("forge version show: %w", err)
			}
			fmt.Printf("raw:        %s\n", v)
			fmt.Printf("major:      %d\n", v.Major())
			fmt.Printf("minor:      %d\n", v.Minor())
			fmt.Printf("patch:      %d\n", v.Patch())
			fmt.Printf("tweak:      %d\n", v.Tweak())
			fmt.Printf("level:      %d\n", v.Level())
			fmt.Printf("prerelease: %t\n", v.IsPrerelease())
			if showSemver {
				sv, err := v.ToSemver()
				if err != nil {
					return fmt.Errorf("forge version show --semver: %w", err)
				}
				fmt.Printf("semver:     %s\n", sv)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSemver, "semver", false, "also print the strict three-component github.com/Masterminds/semver/v3 projection")
	return cmd
}

func buildVersionBumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bump <version> major|minor|patch|tweak",
		Short: "Bump a version component, resetting every looser component to zero",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.Parse(args[0])
			if err != nil {
				return fmt.Errorf("forge version bump: %w", err)
			}
			pos, err := componentIndex(args[1])
			if err != nil {
				return fmt.Errorf("forge version bump: %w", err)
			}
			fmt.Println(v.IncrementAt(pos))
			return nil
		},
	}
}

func componentIndex(name string) (int, error) {
	switch name {
	case "major":
		return 0, nil
	case "minor":
		return 1, nil
	case "patch":
		return 2, nil
	case "tweak":
		return 3, nil
	default:
		return 0, fmt.Errorf("unknown component %q, want one of major, minor, patch, tweak", name)
	}
}

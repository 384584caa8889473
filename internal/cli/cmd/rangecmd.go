package cmd

import (
	"fmt"

	semver "github.com/cinderforge/forge/internal/version"
	"github.com/spf13/cobra"
)

func buildRangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Parse and combine version ranges",
	}
	cmd.AddCommand(
		buildRangeParseCmd(),
		buildRangeContainsCmd(),
		buildRangeUnionCmd(),
		buildRangeIntersectCmd(),
		buildRangeConstraintCmd(),
	)
	return cmd
}

func buildRangeParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <range>",
		Short: "Parse a range expression and print it back in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := semver.ParseRange(args[0])
			if err != nil {
				return fmt.Errorf("forge range parse: %w", err)
			}
			fmt.Println(r.Render(semver.IndividualRealLevel))
			return nil
		},
	}
}

func buildRangeContainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contains <range> <version>",
		Short: "Report whether a version falls inside a range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := semver.ParseRange(args[0])
			if err != nil {
				return fmt.Errorf("forge range contains: %w", err)
			}
			v, err := semver.Parse(args[1])
			if err != nil {
				return fmt.Errorf("forge range contains: %w", err)
			}
			fmt.Println(r.Contains(v))
			return nil
		},
	}
}

func buildRangeUnionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "union <range> <range>",
		Short: "Print the union of two ranges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parseRangePair(args)
			if err != nil {
				return fmt.Errorf("forge range union: %w", err)
			}
			fmt.Println(a.Union(b).Render(semver.IndividualRealLevel))
			return nil
		},
	}
}

func buildRangeIntersectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intersect <range> <range>",
		Short: "Print the intersection of two ranges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parseRangePair(args)
			if err != nil {
				return fmt.Errorf("forge range intersect: %w", err)
			}
			fmt.Println(a.Intersect(b).Render(semver.IndividualRealLevel))
			return nil
		},
	}
}

func buildRangeConstraintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constraint <range>",
		Short: "Project a range into a github.com/Masterminds/semver/v3 constraint string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := semver.ParseRange(args[0])
			if err != nil {
				return fmt.Errorf("forge range constraint: %w", err)
			}
			c, err := r.ToConstraint()
			if err != nil {
				return fmt.Errorf("forge range constraint: %w", err)
			}
			fmt.Println(c)
			return nil
		},
	}
}

func parseRangePair(args []string) (semver.VersionRange, semver.VersionRange, error) {
	a, err := semver.ParseRange(args[0])
	if err != nil {
		return semver.VersionRange{}, semver.VersionRange{}, err
	}
	b, err := semver.ParseRange(args[1])
	if err != nil {
		return semver.VersionRange{}, semver.VersionRange{}, err
	}
	return a, b, nil
}

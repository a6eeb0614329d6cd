package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/phpls/internal/aggregate"
)

func newAggregateCmd() *cobra.Command {
	var strategyFlag string

	cmd := &cobra.Command{
		Use:   "aggregate <fqn>",
		Short: "Print a class-like symbol's merged member view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			strategy, err := parseStrategy(strategyFlag)
			if err != nil {
				return err
			}

			result, err := e.Aggregate(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s extends/implements/uses: %s\n", args[0], strings.Join(result.Associated, ", "))
			printSymbols(cmd, result.Members(strategy), 0)
			return nil
		},
	}
	cmd.Flags().StringVar(&strategyFlag, "strategy", "override", "merge strategy: none, override, documented, base")
	return cmd
}

func parseStrategy(s string) (aggregate.MergeStrategy, error) {
	switch strings.ToLower(s) {
	case "none":
		return aggregate.MergeNone, nil
	case "override":
		return aggregate.MergeOverride, nil
	case "documented":
		return aggregate.MergeDocumented, nil
	case "base":
		return aggregate.MergeBase, nil
	default:
		return 0, fmt.Errorf("unknown merge strategy %q", s)
	}
}

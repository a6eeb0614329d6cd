package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <line:col>",
		Short: "Resolve the static type of the expression at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			uri := "file://" + args[0]
			if _, err := e.OpenDocument(context.Background(), uri, text); err != nil {
				return err
			}

			pos, err := parsePosition(text, args[1])
			if err != nil {
				return err
			}
			t, err := e.ResolveType(context.Background(), uri, pos)
			if err != nil {
				return err
			}
			if t.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "(unresolved)")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

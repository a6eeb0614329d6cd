package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <path>",
		Short: "Walk a workspace, parse every PHP/phtml file, and report symbol counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			total, err := e.Discover(ctx, args[0], func(done, total int) {
				fmt.Fprintf(cmd.OutOrStdout(), "\r%d/%d files", done, total)
			})
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d top-level symbols\n", total)
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/phpls/internal/symbol"
)

func newSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print a single document's top-level symbols",
		Args:  cobra.ExactArgs(1),
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
			printSymbols(cmd, e.DocumentSymbols(uri), 0)
			return nil
		},
	}
}

func newWorkspaceSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workspace-symbols <query>",
		Short: "Print every symbol in the store whose FQN begins with query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			defer e.Close()
			printSymbols(cmd, e.WorkspaceSymbols(args[0]), 0)
			return nil
		},
	}
}

func printSymbols(cmd *cobra.Command, syms []*symbol.Symbol, depth int) {
	prefix := ""
	for i := 0; i < depth; i++ {
		prefix += "  "
	}
	for _, s := range syms {
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s %s", prefix, s.Kind, s.Name)
		if !s.Type.IsEmpty() {
			fmt.Fprintf(cmd.OutOrStdout(), " : %s", s.Type.String())
		}
		fmt.Fprintln(cmd.OutOrStdout())
		printSymbols(cmd, s.Children, depth+1)
	}
}

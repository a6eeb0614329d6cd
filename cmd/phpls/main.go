// Command phpls is the CLI entrypoint for the PHP semantic engine: a
// spf13/cobra command tree over internal/engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/phpls/internal/config"
	"github.com/oxhq/phpls/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "phpls",
		Short: "phpls is a PHP-like language semantic engine",
		Long:  "Symbol indexing, type aggregation, and context-sensitive type resolution for a PHP-like language.",
	}

	root.AddCommand(
		newIndexCmd(),
		newSymbolsCmd(),
		newWorkspaceSymbolsCmd(),
		newResolveCmd(),
		newAggregateCmd(),
		newServeCmd(),
	)
	return root
}

func newEngine() (*engine.Engine, error) {
	return engine.New(config.LoadConfig())
}

package main

import (
	"context"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "Fetch the latest quote from Yahoo Finance",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	sym := symbol.Normalize(args[0])
	return withApp(func(a *app.App, log *zap.Logger) error {
		q, err := a.Quote(context.Background(), sym)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), q)
	})
}

package main

import (
	"context"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/newthinker/datahub/internal/unified"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeDays int

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Fetch news, profile, quote and source compatibility in one call",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", unified.DefaultAnalysisDays, "News window in days")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sym := symbol.Normalize(args[0])
	return withApp(func(a *app.App, log *zap.Logger) error {
		return printJSON(cmd.OutOrStdout(), a.Service().Analyze(context.Background(), sym, analyzeDays))
	})
}

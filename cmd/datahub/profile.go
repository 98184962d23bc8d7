package main

import (
	"context"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/newthinker/datahub/internal/unified"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profileSource   string
	profileDetailed bool
)

var profileCmd = &cobra.Command{
	Use:   "profile [symbol]",
	Short: "Fetch the company profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileSource, "source", unified.AutoSource, "Data source name or auto")
	profileCmd.Flags().BoolVar(&profileDetailed, "detailed", false, "Include extended financial metrics")

	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	sym := symbol.Normalize(args[0])
	return withApp(func(a *app.App, log *zap.Logger) error {
		p, err := a.Service().GetCompanyProfileUnified(context.Background(), sym, profileSource, profileDetailed)
		return renderResult(cmd.OutOrStdout(), p, err, false)
	})
}

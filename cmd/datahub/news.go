package main

import (
	"context"
	"time"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/newthinker/datahub/internal/unified"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	newsStart  string
	newsEnd    string
	newsDays   int
	newsLimit  int
	newsSource string
)

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Fetch company news",
	Long:  "Fetch company news from the first data source that has any, e.g. datahub news 0700 --days 3",
	Args:  cobra.ExactArgs(1),
	RunE:  runNews,
}

func init() {
	newsCmd.Flags().StringVar(&newsStart, "start", "", "Start date YYYY-MM-DD (default: end minus --days)")
	newsCmd.Flags().StringVar(&newsEnd, "end", "", "End date YYYY-MM-DD (default: today)")
	newsCmd.Flags().IntVar(&newsDays, "days", 7, "Window size when --start is not given")
	newsCmd.Flags().IntVar(&newsLimit, "limit", 10, "Maximum number of articles")
	newsCmd.Flags().StringVar(&newsSource, "source", unified.AutoSource, "Data source name or auto")

	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, args []string) error {
	sym := symbol.Normalize(args[0])
	start, end, err := newsWindow(newsStart, newsEnd, newsDays, time.Now())
	if err != nil {
		return err
	}

	return withApp(func(a *app.App, log *zap.Logger) error {
		articles, err := a.Service().GetCompanyNewsUnified(context.Background(), sym, start, end, newsSource, newsLimit)
		log.Debug("news fetched", zap.String("symbol", sym), zap.Int("count", len(articles)))
		return renderResult(cmd.OutOrStdout(), articles, err, true)
	})
}

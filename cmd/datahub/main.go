package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "datahub",
	Short: "DataHub - multi-source stock data aggregation",
	Long: `DataHub serves company news and profiles for US, HK, CN_A and TSX symbols.
It queries Google News, Yahoo Finance and Alpha Vantage in priority order
and falls back to the next source when one fails.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

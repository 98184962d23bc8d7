package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/source"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show health, rate limits and capabilities of every data source",
	RunE:  runStatus,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe every data source",
	RunE:  runHealth,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered data sources per data type",
	RunE:  runSources,
}

var compatCmd = &cobra.Command{
	Use:   "compat [symbol]",
	Short: "Show which data sources support a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompat,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(compatCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App, log *zap.Logger) error {
		status := a.Service().Status(context.Background())
		if statusJSON {
			return printJSON(cmd.OutOrStdout(), status)
		}

		names := make([]string, 0, len(status))
		for name := range status {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tHEALTHY\tFREE\tDAILY\tREMAINING\tPER MIN\tCAPABILITIES\t")
		for _, name := range names {
			st := status[name]
			caps := make([]string, len(st.Capabilities))
			for i, c := range st.Capabilities {
				caps[i] = string(c)
			}
			fmt.Fprintf(w, "%s\t%t\t%t\t%s\t%s\t%d\t%s\t\n",
				name, st.Healthy, st.RateLimit.Free, limit(st.RateLimit.DailyLimit), limit(st.RateLimit.Remaining),
				st.RateLimit.PerMinuteLimit, strings.Join(caps, ","))
		}
		return w.Flush()
	})
}

func runHealth(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App, log *zap.Logger) error {
		report := a.Service().HealthCheck(context.Background())
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if !report.Healthy() {
			return errUnavailable
		}
		return nil
	})
}

func runSources(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App, log *zap.Logger) error {
		return printJSON(cmd.OutOrStdout(), a.Service().AvailableSources())
	})
}

func runCompat(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App, log *zap.Logger) error {
		return printJSON(cmd.OutOrStdout(), a.Service().Matrix().Report(symbol.Normalize(args[0])))
	})
}

func limit(n int) string {
	if n == source.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}

package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var scrapeFlags struct {
	limit       int
	concurrency int
	quiet       bool
	logs        bool
}

func init() {
	flags := scrapeCmd.Flags()
	flags.IntVar(&scrapeFlags.limit, "limit", 0, "Only scrape the first N models of the library.")
	flags.IntVar(&scrapeFlags.concurrency, "concurrency", 0, "Tags pages fetched at once (1-8), overrides the config.")
	flags.BoolVarP(&scrapeFlags.quiet, "quiet", "q", false, "Do not print the resulting catalog.")
	flags.BoolVar(&scrapeFlags.logs, "logs", false, "Print the refresh log buffer afterwards.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--limit <n>] [--concurrency <n>]",
	Short: "Scrapes the library once, persists the result and prints it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(appOptions{
			limit:       scrapeFlags.limit,
			concurrency: scrapeFlags.concurrency,
		})
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.scraper.Refresh(cmd.Context())
		if scrapeFlags.logs {
			renderLogs(os.Stderr, a.cache.Logs())
		}
		if err != nil {
			return err
		}

		slog.Info(
			"scrape finished",
			"models", summary.Models,
			"versions", summary.Versions,
			"detail_failures", summary.DetailFailures,
			"duration", summary.Duration.String(),
		)
		if a.store == nil {
			slog.Warn("no snapshot store configured, the result was not persisted")
		}

		if !scrapeFlags.quiet {
			snap := a.cache.Snapshot()
			renderModels(cmd.OutOrStdout(), snap.Models, snap.UpdatedAt)
		}
		return nil
	},
}

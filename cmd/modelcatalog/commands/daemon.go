package commands

import (
	"context"
	"errors"
	"log/slog"
	"modelcatalog/internal/components/chrono"
	"modelcatalog/internal/components/telemetry"
	"modelcatalog/internal/scrapers/ollama"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

var daemonNow bool

func init() {
	daemonCmd.Flags().BoolVar(&daemonNow, "now", false, "Refresh immediately instead of waiting for the first scheduled run, overrides refresh.on_start.")
	rootCmd.AddCommand(daemonCmd)
}

func refreshJob(ctx context.Context, a *app) func() {
	return func() {
		summary, err := a.scraper.Refresh(ctx)
		if errors.Is(err, ollama.ErrRefreshInProgress) {
			slog.Warn("skipping refresh, the previous one is still running")
			return
		}
		if err != nil {
			slog.Error("refresh failed", "err", err)
			return
		}
		slog.Info(
			"refresh finished",
			"models", summary.Models,
			"versions", summary.Versions,
			"detail_failures", summary.DetailFailures,
			"duration", summary.Duration.String(),
		)
	}
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--now]",
	Short: "Keeps the persisted catalog fresh by refreshing it on a schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		otel, err := telemetry.SetupOtel(ctx, "modelcatalog", a.config.Telemetry)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := otel.Shutdown(shutdownCtx)
			if err != nil {
				slog.Warn("failed to flush telemetry", "err", err)
			}
		}()
		telemetry.InstrumentPerfStats(ctx)

		err = a.scraper.Warm(ctx)
		if err != nil {
			slog.Warn("starting with an empty catalog", "err", err)
		}

		job := refreshJob(ctx, a)
		cron := chrono.NewStandardCron(a.time, a.tel)
		defer cron.Stop()
		err = cron.Cron(a.config.Refresh.Cron, job)
		if err != nil {
			return err
		}
		slog.Info("refresh scheduled", "cron", a.config.Refresh.Cron)

		onStart := a.config.Refresh.OnStart != nil && *a.config.Refresh.OnStart
		if cmd.Flags().Changed("now") {
			onStart = daemonNow
		}
		var initial sync.WaitGroup
		if onStart {
			initial.Add(1)
			go func() {
				defer initial.Done()
				job()
			}()
		}

		<-ctx.Done()
		slog.Info("shutting down")
		initial.Wait()
		return nil
	},
}

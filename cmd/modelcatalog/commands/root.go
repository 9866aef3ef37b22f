package commands

import (
	"context"
	"fmt"
	"modelcatalog/internal/components/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpDir    string
)

var rootCmd = &cobra.Command{
	Use:          "modelcatalog",
	Short:        "modelcatalog scrapes the Ollama model library into a queryable catalog.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "config.json5", "The config file, <name>.local.<ext> overrides are merged on top.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
	flags.StringVar(&dumpDir, "dump-http", "", "Write every HTTP exchange into this directory, it is cleared first.")
}

func openApp(opts appOptions) (*app, error) {
	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	opts.dumpDir = dumpDir
	return newApp(cfg, opts)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

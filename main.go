package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flock",
		Short: "Predator/prey flocking simulation",
		Long: `flock simulates prey flocks under attack by predators on a square domain.

Run it headless to produce telemetry, open the viewer to watch it, or
serve snapshots to websocket clients.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("log-format")
			setupLogging(format)

			path, _ := cmd.Flags().GetString("config")
			if err := config.Init(path); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or TOML config file (empty = use defaults)")
	rootCmd.PersistentFlags().Int64("seed", 0, "RNG seed (0 = time-based)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format: json or text")

	rootCmd.AddCommand(
		newRunCmd(),
		newViewCmd(),
		newServeCmd(),
		newRunsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler (JSON to stdout unless text is asked for).
func setupLogging(format string) {
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// seedFlag returns the --seed value, or a time-based seed when it is zero.
func seedFlag(cmd *cobra.Command) int64 {
	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed
}

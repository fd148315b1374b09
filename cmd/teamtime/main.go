package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mmynk/teamtime/internal/app"
	"github.com/mmynk/teamtime/internal/config"
	"github.com/mmynk/teamtime/internal/metrics"
	"github.com/mmynk/teamtime/internal/storage/sqlite"
	"github.com/mmynk/teamtime/pkg/logging"
)

var (
	configPath string
	dbPath     string
	jsonOutput bool

	cfg      *config.Config
	kv       *sqlite.SQLiteStore
	registry *prometheus.Registry
	engine   *app.App
)

func defaultConfigPath() string {
	if p := os.Getenv("TEAMTIME_CONFIG"); p != "" {
		return p
	}
	return "teamtime.yaml"
}

var rootCmd = &cobra.Command{
	Use:           "teamtime",
	Short:         "Calendar of events organized into color-coded groups",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		logging.Setup(cfg.LogLevel)

		kv, err = sqlite.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		slog.Debug("Storage initialized", "database", cfg.DBPath)

		registry = prometheus.NewRegistry()
		engine = app.New(context.Background(), kv, metrics.New(registry))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if engine != nil {
			engine.Close()
		}
		if kv != nil {
			if err := kv.Close(); err != nil {
				slog.Error("Failed to close storage", "error", err)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "calendar", Title: "Calendar:"},
		&cobra.Group{ID: "server", Title: "Server:"},
	)

	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

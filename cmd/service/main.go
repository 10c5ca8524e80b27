// cmd/service/main.go
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"commit-lens/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "commitlens",
	Short: "GitHub App backend for the commit-lens dashboard",
	Long: `commitlens links GitHub App installations to dashboard users, mirrors
the repositories they can see, and records pull request activity delivered
by GitHub webhooks.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

// bootstrap initializes the structured logger and loads configuration.
func bootstrap() (*config.Config, *slog.Logger, error) {
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")
	return cfg, logger, nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}

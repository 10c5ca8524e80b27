package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"commit-lens/internal/installer"
)

var syncCmd = &cobra.Command{
	Use:   "sync <installation-id>",
	Short: "Sync the repositories of one installation now",
	Long: `Sync the repositories of one installation now.

Unknown installations are recorded unclaimed, as a webhook would.

Example:
  commitlens sync 12345678`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		installationID, err := installer.ParseInstallationID(args[0])
		if err != nil {
			return err
		}
		return runSync(installationID)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(installationID int64) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()

	application, err := newApp(cfg, dbpool, logger)
	if err != nil {
		return err
	}

	repos, err := application.syncer.SyncInstallation(ctx, installationID)
	logger.Info("Sync finished", "installation_id", installationID, "synced", len(repos))
	return err
}

// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"commit-lens/internal/database"
	"commit-lens/internal/model"
)

const (
	// Number of repository upserts (and installations per reconcile cycle) run in parallel
	concurrency = 5
)

// RepositorySource is the subset of the GitHub client the syncer needs.
type RepositorySource interface {
	WalkInstallationRepositories(ctx context.Context, installationID int64, fn func([]model.Repository) error) error
	GetInstallationDetails(ctx context.Context, installationID int64) (*model.InstallationDetails, error)
}

// Syncer mirrors the repositories visible to an installation into the database.
type Syncer struct {
	db           database.Querier
	ghClient     RepositorySource
	logger       *slog.Logger
	syncInterval time.Duration
}

// NewSyncer creates a new Syncer instance. An interval of zero disables the periodic reconcile.
func NewSyncer(db database.Querier, ghClient RepositorySource, logger *slog.Logger, interval time.Duration) *Syncer {
	return &Syncer{
		db:           db,
		ghClient:     ghClient,
		logger:       logger,
		syncInterval: interval,
	}
}

// SyncInstallation upserts every repository the installation can currently see.
//
// Each row is upserted on its own; rows written before a failure stay written.
// The returned slice holds the rows that were committed, and the error joins
// every failure encountered, so a partial sync returns both.
func (s *Syncer) SyncInstallation(ctx context.Context, installationID int64) ([]database.Repository, error) {
	logger := s.logger.With("installation_id", installationID)
	logger.Info("Syncing installation repositories")

	if err := s.ensureInstallation(ctx, installationID); err != nil {
		return nil, err
	}

	var (
		committed []database.Repository
		failures  []error
	)
	walkErr := s.ghClient.WalkInstallationRepositories(ctx, installationID, func(page []model.Repository) error {
		rows, err := s.upsertPage(ctx, installationID, page)
		committed = append(committed, rows...)
		if err != nil {
			failures = append(failures, err)
		}
		return nil
	})
	if walkErr != nil {
		failures = append(failures, walkErr)
	}

	err := errors.Join(failures...)
	if err != nil {
		logger.Error("Installation sync finished with errors", "synced", len(committed), "error", err)
		return committed, err
	}
	logger.Info("Installation sync finished", "synced", len(committed))
	return committed, nil
}

// ensureInstallation inserts an unclaimed installation row when none exists yet,
// so repositories always have a parent to reference.
func (s *Syncer) ensureInstallation(ctx context.Context, installationID int64) error {
	_, err := s.db.GetInstallation(ctx, installationID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to look up installation %d: %w", installationID, err)
	}

	s.logger.Info("Installation not found in DB, creating unclaimed entry", "installation_id", installationID)
	details, err := s.ghClient.GetInstallationDetails(ctx, installationID)
	if err != nil {
		return err
	}
	err = s.db.EnsureInstallation(ctx, database.EnsureInstallationParams{
		InstallationID:   installationID,
		AccountLogin:     details.AccountLogin,
		AccountAvatarUrl: toPgText(&details.AccountAvatarURL),
	})
	if err != nil {
		return fmt.Errorf("failed to create installation %d: %w", installationID, err)
	}
	return nil
}

// upsertPage writes one page of repositories with bounded parallelism. Every
// item is attempted; failures are joined rather than cancelling the rest.
func (s *Syncer) upsertPage(ctx context.Context, installationID int64, page []model.Repository) ([]database.Repository, error) {
	var g errgroup.Group
	g.SetLimit(concurrency)

	rows := make([]*database.Repository, len(page))
	errs := make([]error, len(page))
	for i, repo := range page {
		i, repo := i, repo
		g.Go(func() error {
			row, err := s.db.UpsertRepository(ctx, toUpsertParams(installationID, repo))
			if err != nil {
				s.logger.Error("Failed to upsert repository", "installation_id", installationID, "repo_id", repo.GithubRepoID, "error", err)
				errs[i] = fmt.Errorf("upsert repository %d (%s): %w", repo.GithubRepoID, repo.FullName, err)
				return nil
			}
			rows[i] = &row
			return nil
		})
	}
	_ = g.Wait()

	committed := make([]database.Repository, 0, len(page))
	for _, row := range rows {
		if row != nil {
			committed = append(committed, *row)
		}
	}
	return committed, errors.Join(errs...)
}

// Start begins the periodic reconcile of every known installation.
func (s *Syncer) Start(ctx context.Context) {
	if s.syncInterval <= 0 {
		s.logger.Info("Periodic sync disabled")
		return
	}
	s.logger.Info("Starting syncer", "interval", s.syncInterval.String(), "concurrency", concurrency)
	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	s.runSyncCycle(ctx) // Initial sync

	for {
		select {
		case <-ticker.C:
			s.runSyncCycle(ctx)
		case <-ctx.Done():
			s.logger.Info("Syncer shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runSyncCycle re-syncs all installations concurrently.
func (s *Syncer) runSyncCycle(ctx context.Context) {
	s.logger.Info("Starting new sync cycle")
	ids, err := s.db.ListInstallationIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list installations", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			_, err := s.SyncInstallation(gctx, id)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("Failed to sync installation", "installation_id", id, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Sync cycle finished with an error", "error", err)
	} else {
		s.logger.Info("Sync cycle finished", "installations", len(ids))
	}
}

func toUpsertParams(installationID int64, r model.Repository) database.UpsertRepositoryParams {
	return database.UpsertRepositoryParams{
		ID:             r.GithubRepoID,
		InstallationID: installationID,
		Name:           r.Name,
		FullName:       r.FullName,
		Owner:          r.Owner,
		Description:    toPgText(r.Description),
		IsPrivate:      r.Private,
		DefaultBranch:  toPgText(&r.DefaultBranch),
		HtmlUrl:        r.HTMLURL,
	}
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{
		String: *s,
		Valid:  *s != "",
	}
}

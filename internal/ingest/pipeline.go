// Package ingest turns authenticated webhook deliveries into stored state.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"commit-lens/internal/database"
	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/webhook"
)

// Outcome describes what the pipeline did with a delivery.
type Outcome string

const (
	// OutcomeProcessed means a pull request event row was written.
	OutcomeProcessed Outcome = "processed"
	// OutcomeSynced means an installation sync ran.
	OutcomeSynced Outcome = "synced"
	// OutcomeAcknowledged means the delivery was accepted and ignored.
	OutcomeAcknowledged Outcome = "acknowledged"
)

// Delivery is an authenticated webhook delivery.
type Delivery struct {
	EventType  string
	DeliveryID string
	Body       []byte
}

// Result is returned for every delivery that did not fail.
type Result struct {
	Outcome Outcome
	EventID string
	Message string
}

// InstallationSyncer is the part of the sync engine the pipeline drives.
type InstallationSyncer interface {
	SyncInstallation(ctx context.Context, installationID int64) ([]database.Repository, error)
}

// Pipeline classifies deliveries and records pull request activity.
type Pipeline struct {
	db     database.Querier
	syncer InstallationSyncer
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewPipeline creates a Pipeline.
func NewPipeline(db database.Querier, syncer InstallationSyncer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		db:     db,
		syncer: syncer,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Ingest handles one delivery. Malformed pull request payloads fail with a
// PayloadValidationError; every other failure is an InternalIngestionError.
// Replayed deliveries are processed again.
func (p *Pipeline) Ingest(ctx context.Context, d Delivery) (*Result, error) {
	logger := p.logger.With("delivery_id", d.DeliveryID, "event", d.EventType)

	ev, err := webhook.ParseEvent(d.EventType, d.Body)
	if err != nil {
		logger.Warn("Rejected webhook payload", "error", err)
		return nil, err
	}

	switch ev := ev.(type) {
	case *webhook.PullRequest:
		return p.handlePullRequest(ctx, logger, ev)
	case *webhook.InstallationChange:
		return p.handleInstallationChange(ctx, logger, ev)
	case *webhook.Unhandled:
		logger.Debug("Ignoring unhandled event type")
		return acknowledged("event type not handled"), nil
	default:
		return nil, &custom_errors.InternalIngestionError{Err: fmt.Errorf("unexpected event %T", ev)}
	}
}

func (p *Pipeline) handlePullRequest(ctx context.Context, logger *slog.Logger, ev *webhook.PullRequest) (*Result, error) {
	logger = logger.With("action", ev.Action)
	if ev.Action != "opened" && ev.Action != "synchronize" {
		logger.Debug("Ignoring pull request action")
		return acknowledged("pull request action not tracked"), nil
	}

	snap, err := ev.Snapshot()
	if err != nil {
		logger.Warn("Rejected pull request payload", "error", err)
		return nil, err
	}
	repoID := snap.Repository.GithubRepoID
	logger = logger.With("repo_id", repoID, "pr_number", snap.Number)

	found, err := p.repositoryExists(ctx, repoID)
	if err != nil {
		return nil, &custom_errors.InternalIngestionError{Err: err}
	}
	if !found {
		p.selfHeal(ctx, logger, ev)
	}

	row, err := p.db.CreatePullRequestEvent(ctx, toEventParams(p.newID(), p.now(), snap))
	if err != nil {
		logger.Error("Failed to store pull request event", "error", err)
		return nil, &custom_errors.InternalIngestionError{Err: fmt.Errorf("store pull request event: %w", err)}
	}

	logger.Info("Stored pull request event", "event_id", row.ID)
	return &Result{Outcome: OutcomeProcessed, EventID: row.ID, Message: "pull request event recorded"}, nil
}

// selfHeal syncs the payload's installation when the repository is not known
// locally. Failures are logged and the event is still recorded.
func (p *Pipeline) selfHeal(ctx context.Context, logger *slog.Logger, ev *webhook.PullRequest) {
	installationID, ok := ev.InstallationID()
	if !ok {
		logger.Warn("Repository not found and payload names no installation, recording event without sync")
		return
	}
	logger.Info("Repository not found, syncing installation", "installation_id", installationID)
	if _, err := p.syncer.SyncInstallation(ctx, installationID); err != nil {
		logger.Warn("Self-heal sync failed, recording event anyway", "installation_id", installationID, "error", err)
	}
}

func (p *Pipeline) repositoryExists(ctx context.Context, repoID int64) (bool, error) {
	_, err := p.db.GetRepository(ctx, repoID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("look up repository %d: %w", repoID, err)
	}
}

func (p *Pipeline) handleInstallationChange(ctx context.Context, logger *slog.Logger, ev *webhook.InstallationChange) (*Result, error) {
	logger = logger.With("action", ev.Action, "installation_id", ev.InstallationID)
	switch ev.Action {
	case "created", "added", "repositories_added":
	default:
		logger.Debug("Ignoring installation action")
		return acknowledged("installation action not tracked"), nil
	}

	repos, err := p.syncer.SyncInstallation(ctx, ev.InstallationID)
	if err != nil {
		logger.Error("Installation sync failed", "synced", len(repos), "error", err)
		return nil, &custom_errors.InternalIngestionError{Err: err}
	}
	return &Result{Outcome: OutcomeSynced, Message: fmt.Sprintf("synced %d repositories", len(repos))}, nil
}

func acknowledged(msg string) *Result {
	return &Result{Outcome: OutcomeAcknowledged, Message: msg}
}

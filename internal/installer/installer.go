// Package installer links GitHub App installations to local users.
package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"commit-lens/internal/database"
	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/model"
)

// SetupActionRequest is sent when an organization member requested the
// installation and an owner still has to approve it.
const SetupActionRequest = "request"

// StateTokens signs and verifies the state parameter round-tripped through GitHub.
type StateTokens interface {
	Sign(userID string) (string, error)
	Verify(token string) (string, error)
}

// InstallationSource fetches installation metadata from GitHub.
type InstallationSource interface {
	GetInstallationDetails(ctx context.Context, installationID int64) (*model.InstallationDetails, error)
}

// InstallationSyncer mirrors an installation's repositories.
type InstallationSyncer interface {
	SyncInstallation(ctx context.Context, installationID int64) ([]database.Repository, error)
}

// Options configures an Installer.
type Options struct {
	// GithubWebURL is the GitHub web root, without a trailing slash.
	GithubWebURL string
	// AppSlug is the app's URL name on GitHub.
	AppSlug string
}

// Installer runs the install redirect and callback.
type Installer struct {
	db     database.Querier
	gh     InstallationSource
	syncer InstallationSyncer
	state  StateTokens
	opts   Options
	logger *slog.Logger
}

// NewInstaller creates an Installer.
func NewInstaller(db database.Querier, gh InstallationSource, syncer InstallationSyncer, state StateTokens, opts Options, logger *slog.Logger) *Installer {
	return &Installer{db: db, gh: gh, syncer: syncer, state: state, opts: opts, logger: logger}
}

// InstallURL returns the GitHub page that installs the app, carrying a state token for userID.
func (i *Installer) InstallURL(userID string) (string, error) {
	state, err := i.state.Sign(userID)
	if err != nil {
		return "", err
	}
	u := fmt.Sprintf("%s/apps/%s/installations/new", i.opts.GithubWebURL, url.PathEscape(i.opts.AppSlug))
	return u + "?" + url.Values{"state": {state}}.Encode(), nil
}

// Callback holds the query parameters GitHub sends after an install.
type Callback struct {
	InstallationID string
	SetupAction    string
	State          string
}

// Completion describes a finished callback.
type Completion struct {
	Installation database.Installation
	// Pending is set when the install awaits approval and nothing was claimed.
	Pending bool
	// Repositories is the number of repositories synced.
	Repositories int
}

// CompleteInstallation verifies the state token and claims the installation
// for the user it names. The claim is refused with ErrInstallationClaimed if
// another user already owns the installation. A failed repository sync after
// a successful claim is logged and does not fail the callback.
func (i *Installer) CompleteInstallation(ctx context.Context, cb Callback) (*Completion, error) {
	userID, err := i.state.Verify(cb.State)
	if err != nil {
		return nil, err
	}
	if cb.SetupAction == SetupActionRequest {
		i.logger.Info("Installation requested, awaiting approval", "user_id", userID)
		return &Completion{Pending: true}, nil
	}
	installationID, err := ParseInstallationID(cb.InstallationID)
	if err != nil {
		return nil, err
	}
	logger := i.logger.With("installation_id", installationID, "user_id", userID, "setup_action", cb.SetupAction)

	if _, err := i.db.GetUser(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_errors.ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	details, err := i.gh.GetInstallationDetails(ctx, installationID)
	if err != nil {
		return nil, err
	}

	inst, err := i.db.ClaimInstallation(ctx, database.ClaimInstallationParams{
		InstallationID:   installationID,
		UserID:           pgtype.Text{String: userID, Valid: true},
		AccountLogin:     details.AccountLogin,
		AccountAvatarUrl: pgtype.Text{String: details.AccountAvatarURL, Valid: details.AccountAvatarURL != ""},
	})
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Warn("Installation already claimed by another user")
		return nil, custom_errors.ErrInstallationClaimed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim installation: %w", err)
	}
	logger.Info("Installation claimed", "account", inst.AccountLogin)

	repos, err := i.syncer.SyncInstallation(ctx, installationID)
	if err != nil {
		logger.Error("Repository sync after install failed", "synced", len(repos), "error", err)
	}
	return &Completion{Installation: inst, Repositories: len(repos)}, nil
}

// ListInstallations returns the installations userID owns.
func (i *Installer) ListInstallations(ctx context.Context, userID string) ([]database.Installation, error) {
	insts, err := i.db.ListInstallationsForUser(ctx, pgtype.Text{String: userID, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list installations: %w", err)
	}
	return insts, nil
}

// RemoveInstallation unlinks an installation and its repositories from userID.
// Installations owned by anyone else are reported as not found.
func (i *Installer) RemoveInstallation(ctx context.Context, userID string, installationID int64) error {
	n, err := i.db.DeleteInstallation(ctx, database.DeleteInstallationParams{
		InstallationID: installationID,
		UserID:         pgtype.Text{String: userID, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to delete installation: %w", err)
	}
	if n == 0 {
		return custom_errors.ErrInstallationNotFound
	}
	i.logger.Info("Installation removed", "installation_id", installationID, "user_id", userID)
	return nil
}

// ParseInstallationID parses a positive decimal installation id.
func ParseInstallationID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &custom_errors.ErrInvalidInstallationID{Value: raw}
	}
	return id, nil
}

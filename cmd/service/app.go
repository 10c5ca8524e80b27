package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"commit-lens/internal/api"
	"commit-lens/internal/appauth"
	"commit-lens/internal/config"
	"commit-lens/internal/database"
	"commit-lens/internal/github"
	"commit-lens/internal/ingest"
	"commit-lens/internal/installer"
	"commit-lens/internal/syncer"
	"commit-lens/internal/webhook"
)

// app holds the wired application components.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	queries   database.Querier
	syncer    *syncer.Syncer
	pipeline  *ingest.Pipeline
	installer *installer.Installer
	sessions  *appauth.StateSigner
	webhooks  *webhook.Authenticator
}

// newApp wires every component from cfg. It fails fast on bad key material.
func newApp(cfg *config.Config, db database.DBTX, logger *slog.Logger) (*app, error) {
	issuer, err := appauth.NewIssuer(cfg.AppCredential())
	if err != nil {
		return nil, fmt.Errorf("failed to load GitHub App credentials: %w", err)
	}

	ghClient, err := github.NewClient(issuer, github.Options{
		BaseURL:     cfg.GithubAPIURL,
		Timeout:     cfg.UpstreamTimeout,
		CacheTokens: cfg.TokenCacheEnabled,
	}, logger)
	if err != nil {
		return nil, err
	}

	queries := database.New(db)
	appSyncer := syncer.NewSyncer(queries, ghClient, logger, cfg.SyncInterval)
	signer := appauth.NewStateSigner(cfg.JWTSecret)

	return &app{
		cfg:      cfg,
		logger:   logger,
		queries:  queries,
		syncer:   appSyncer,
		pipeline: ingest.NewPipeline(queries, appSyncer, logger),
		installer: installer.NewInstaller(queries, ghClient, appSyncer, signer, installer.Options{
			GithubWebURL: cfg.GithubWebURL,
			AppSlug:      cfg.GithubAppSlug,
		}, logger),
		sessions: signer,
		webhooks: webhook.NewAuthenticator(cfg.GithubWebhookSecret),
	}, nil
}

func (a *app) handler() http.Handler {
	return api.NewRouter(api.Deps{
		DB:          a.queries,
		Webhooks:    a.webhooks,
		Ingester:    a.pipeline,
		Installer:   a.installer,
		Sessions:    a.sessions,
		FrontendURL: a.cfg.FrontendURL,
	}, a.logger)
}

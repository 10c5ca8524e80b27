// internal/api/handler.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"commit-lens/internal/database"
	"commit-lens/internal/ingest"
	"commit-lens/internal/installer"
)

// WebhookVerifier checks X-Hub-Signature-256 against the raw body.
type WebhookVerifier interface {
	Verify(body []byte, signature string) bool
}

// Ingester processes authenticated webhook deliveries.
type Ingester interface {
	Ingest(ctx context.Context, d ingest.Delivery) (*ingest.Result, error)
}

// InstallFlow links installations to users.
type InstallFlow interface {
	InstallURL(userID string) (string, error)
	CompleteInstallation(ctx context.Context, cb installer.Callback) (*installer.Completion, error)
	ListInstallations(ctx context.Context, userID string) ([]database.Installation, error)
	RemoveInstallation(ctx context.Context, userID string, installationID int64) error
}

// SessionVerifier resolves a session cookie to a user id.
type SessionVerifier interface {
	VerifySession(token string) (string, error)
}

// Deps are the collaborators the router needs.
type Deps struct {
	DB        database.Querier
	Webhooks  WebhookVerifier
	Ingester  Ingester
	Installer InstallFlow
	Sessions  SessionVerifier
	// FrontendURL is the dashboard origin, without a trailing slash.
	FrontendURL string
}

// Handler is the container for API dependencies.
type Handler struct {
	Deps
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(deps Deps, logger *slog.Logger) http.Handler {
	h := &Handler{
		Deps:   deps,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Post("/webhooks/github", h.receiveWebhook)

	r.Route("/github", func(r chi.Router) {
		r.With(h.requireSession).Get("/install", h.startInstall)
		r.Get("/callback", h.installCallback)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(h.requireSession)
		r.Use(h.requireSameOrigin)
		r.Get("/installations", h.listInstallations)
		r.Delete("/installations/{id}", h.removeInstallation)
		r.Get("/repositories", h.listRepositories)
		r.Get("/events/pull-requests", h.listPullRequestEvents)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger narrows the handler logger to the current request.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With("request_id", middleware.GetReqID(r.Context()))
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"commit-lens/internal/database"
	"commit-lens/internal/installer"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 100
)

type installationView struct {
	InstallationID   int64     `json:"installationId"`
	AccountLogin     string    `json:"accountLogin"`
	AccountAvatarURL *string   `json:"accountAvatarUrl"`
	CreatedAt        time.Time `json:"createdAt"`
}

type repositoryView struct {
	ID             int64     `json:"id"`
	InstallationID int64     `json:"installationId"`
	Name           string    `json:"name"`
	FullName       string    `json:"fullName"`
	Owner          string    `json:"owner"`
	Description    *string   `json:"description"`
	IsPrivate      bool      `json:"isPrivate"`
	DefaultBranch  *string   `json:"defaultBranch"`
	HTMLURL        string    `json:"htmlUrl"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type eventRepositoryView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	Owner     string `json:"owner"`
	IsPrivate bool   `json:"isPrivate"`
	HTMLURL   string `json:"htmlUrl"`
}

type pullRequestEventView struct {
	ID              string              `json:"id"`
	PRNumber        int32               `json:"prNumber"`
	Action          string              `json:"action"`
	Title           string              `json:"title"`
	Body            *string             `json:"body"`
	Author          string              `json:"author"`
	AuthorAvatarURL *string             `json:"authorAvatarUrl"`
	BaseBranch      string              `json:"baseBranch"`
	HeadBranch      string              `json:"headBranch"`
	HeadSHA         string              `json:"headSha"`
	State           string              `json:"state"`
	Merged          bool                `json:"merged"`
	HTMLURL         string              `json:"htmlUrl"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	ReceivedAt      time.Time           `json:"receivedAt"`
	Repository      eventRepositoryView `json:"repository"`
}

// listInstallations returns the installations linked to the signed-in user.
// GET /v1/installations
func (h *Handler) listInstallations(w http.ResponseWriter, r *http.Request) {
	insts, err := h.Installer.ListInstallations(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.requestLogger(r).Error("Failed to list installations", "error", err)
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	out := make([]installationView, 0, len(insts))
	for _, i := range insts {
		out = append(out, installationView{
			InstallationID:   i.InstallationID,
			AccountLogin:     i.AccountLogin,
			AccountAvatarURL: textPtr(i.AccountAvatarUrl),
			CreatedAt:        i.CreatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// removeInstallation unlinks one of the signed-in user's installations.
// DELETE /v1/installations/{id}
func (h *Handler) removeInstallation(w http.ResponseWriter, r *http.Request) {
	id, err := installer.ParseInstallationID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Installer.RemoveInstallation(r.Context(), userIDFrom(r.Context()), id); err != nil {
		respondWithDomainError(w, h.requestLogger(r), "Failed to remove installation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listRepositories returns every repository reachable through the user's installations.
// GET /v1/repositories
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.DB.ListRepositoriesForUser(r.Context(), userText(r))
	if err != nil {
		h.requestLogger(r).Error("Failed to list repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	out := make([]repositoryView, 0, len(repos))
	for _, repo := range repos {
		out = append(out, toRepositoryView(repo))
	}
	respondWithJSON(w, http.StatusOK, out)
}

// listPullRequestEvents returns the newest pull request events for the user's repositories.
// GET /v1/events/pull-requests?limit=N
func (h *Handler) listPullRequestEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 || n > maxEventLimit {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 100.")
			return
		}
		limit = n
	}

	rows, err := h.DB.ListPullRequestEventsForUser(r.Context(), database.ListPullRequestEventsForUserParams{
		UserID: userText(r),
		Limit:  int32(limit),
	})
	if err != nil {
		h.requestLogger(r).Error("Failed to list pull request events", "error", err)
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	out := make([]pullRequestEventView, 0, len(rows))
	for _, e := range rows {
		out = append(out, pullRequestEventView{
			ID:              e.ID,
			PRNumber:        e.PrNumber,
			Action:          e.Action,
			Title:           e.Title,
			Body:            textPtr(e.Body),
			Author:          e.Author,
			AuthorAvatarURL: textPtr(e.AuthorAvatarUrl),
			BaseBranch:      e.BaseBranch,
			HeadBranch:      e.HeadBranch,
			HeadSHA:         e.HeadSha,
			State:           e.State,
			Merged:          e.Merged,
			HTMLURL:         e.HtmlUrl,
			CreatedAt:       e.CreatedAt,
			UpdatedAt:       e.UpdatedAt,
			ReceivedAt:      e.ReceivedAt,
			Repository: eventRepositoryView{
				ID:        e.RepositoryID,
				Name:      e.RepositoryName,
				FullName:  e.RepositoryFullName,
				Owner:     e.RepositoryOwner,
				IsPrivate: e.RepositoryIsPrivate,
				HTMLURL:   e.RepositoryHtmlUrl,
			},
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

func toRepositoryView(r database.Repository) repositoryView {
	return repositoryView{
		ID:             r.ID,
		InstallationID: r.InstallationID,
		Name:           r.Name,
		FullName:       r.FullName,
		Owner:          r.Owner,
		Description:    textPtr(r.Description),
		IsPrivate:      r.IsPrivate,
		DefaultBranch:  textPtr(r.DefaultBranch),
		HTMLURL:        r.HtmlUrl,
		UpdatedAt:      r.UpdatedAt,
	}
}

func userText(r *http.Request) pgtype.Text {
	return pgtype.Text{String: userIDFrom(r.Context()), Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

package api

import (
	"net/http"

	"commit-lens/internal/installer"
)

// startInstall sends the signed-in user to GitHub to install the app.
// GET /github/install
func (h *Handler) startInstall(w http.ResponseWriter, r *http.Request) {
	target, err := h.Installer.InstallURL(userIDFrom(r.Context()))
	if err != nil {
		h.requestLogger(r).Error("Failed to build install URL", "error", err)
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// installCallback is GitHub's redirect after an install. It carries no
// session cookie; the state parameter identifies the user.
// GET /github/callback?installation_id=&setup_action=&state=
func (h *Handler) installCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cb := installer.Callback{
		InstallationID: q.Get("installation_id"),
		SetupAction:    q.Get("setup_action"),
		State:          q.Get("state"),
	}
	if cb.SetupAction == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid GitHub App callback parameters")
		return
	}
	if cb.State == "" {
		respondWithError(w, http.StatusBadRequest, "Missing state parameter")
		return
	}
	logger := h.requestLogger(r).With("installation_id", cb.InstallationID, "setup_action", cb.SetupAction)

	done, err := h.Installer.CompleteInstallation(r.Context(), cb)
	if err != nil {
		respondWithDomainError(w, logger, "GitHub App callback failed", err)
		return
	}

	target := h.FrontendURL + "/dashboard?connected=true"
	if done.Pending {
		target = h.FrontendURL + "/dashboard?pending=true"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	custom_errors "commit-lens/internal/errors"
)

const internalErrorMessage = "Internal server error"

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// statusFor maps a domain error onto an HTTP status and a message that is
// safe to show the caller. Unknown errors become a bare 500.
func statusFor(err error) (int, string) {
	var (
		payloadErr *custom_errors.PayloadValidationError
		idErr      *custom_errors.ErrInvalidInstallationID
		timeoutErr *custom_errors.UpstreamTimeoutError
		schemaErr  *custom_errors.SchemaValidationError
	)
	switch {
	case errors.As(err, &payloadErr):
		return http.StatusBadRequest, payloadErr.Error()
	case errors.As(err, &idErr):
		return http.StatusBadRequest, idErr.Error()
	case errors.Is(err, custom_errors.ErrInvalidState):
		return http.StatusUnauthorized, "Invalid or expired state token"
	case errors.Is(err, custom_errors.ErrUnknownUser):
		return http.StatusUnauthorized, "Unknown user"
	case errors.Is(err, custom_errors.ErrInstallationClaimed):
		return http.StatusConflict, "Installation already claimed by another user"
	case errors.Is(err, custom_errors.ErrInstallationNotFound):
		return http.StatusNotFound, "Installation not found"
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, "GitHub did not respond in time"
	case custom_errors.IsRetriable(err), errors.As(err, &schemaErr):
		return http.StatusBadGateway, "GitHub request failed"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// respondWithDomainError writes the mapped status and logs anything that is
// not the caller's fault.
func respondWithDomainError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	code, text := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error(msg, "error", err)
	} else {
		logger.Warn(msg, "error", err)
	}
	respondWithError(w, code, text)
}

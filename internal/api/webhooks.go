package api

import (
	"errors"
	"io"
	"net/http"

	custom_errors "commit-lens/internal/errors"
	"commit-lens/internal/ingest"
)

// maxWebhookBody matches the largest payload GitHub will deliver.
const maxWebhookBody = 25 << 20

type webhookResponse struct {
	Status  ingest.Outcome `json:"status"`
	EventID string         `json:"eventId,omitempty"`
	Message string         `json:"message,omitempty"`
}

// receiveWebhook authenticates and ingests a GitHub delivery.
// POST /webhooks/github
func (h *Handler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("X-Hub-Signature-256")
	eventType := r.Header.Get("X-GitHub-Event")
	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if signature == "" || eventType == "" || deliveryID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing required webhook headers")
		return
	}
	logger := h.requestLogger(r).With("delivery_id", deliveryID, "event", eventType)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Webhook payload too large")
			return
		}
		logger.Warn("Failed to read webhook body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if !h.Webhooks.Verify(body, signature) {
		logger.Warn("Rejected webhook with invalid signature")
		respondWithError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	res, err := h.Ingester.Ingest(r.Context(), ingest.Delivery{EventType: eventType, DeliveryID: deliveryID, Body: body})
	if err != nil {
		var payloadErr *custom_errors.PayloadValidationError
		if errors.As(err, &payloadErr) {
			respondWithError(w, http.StatusBadRequest, payloadErr.Error())
			return
		}
		logger.Error("Webhook processing failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, webhookResponse{Status: res.Outcome, EventID: res.EventID, Message: res.Message})
}

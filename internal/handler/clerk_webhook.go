package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/handler/dto"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/service"
	"github.com/imaginify/imaginify/internal/webhook"
)

// maxWebhookBody bounds the payload read from webhook senders.
const maxWebhookBody = 1 << 20

// SignatureVerifier checks a signed identity provider delivery.
type SignatureVerifier interface {
	Verify(payload []byte, h webhook.Headers) error
}

// LifecycleSyncer applies user lifecycle events.
type LifecycleSyncer interface {
	HandleEvent(ctx context.Context, evt *webhook.Event) (*service.SyncResult, error)
}

// ClerkWebhookHandler receives Clerk user lifecycle webhooks.
type ClerkWebhookHandler struct {
	verifier SignatureVerifier
	syncer   LifecycleSyncer
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewClerkWebhookHandler creates a new ClerkWebhookHandler.
func NewClerkWebhookHandler(verifier SignatureVerifier, syncer LifecycleSyncer, logger *slog.Logger, recorder metrics.Recorder) *ClerkWebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ClerkWebhookHandler{
		verifier: verifier,
		syncer:   syncer,
		logger:   logger,
		metrics:  recorder,
	}
}

// Handle handles POST /api/webhooks/clerk.
func (h *ClerkWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	headers := webhook.HeadersFromRequest(r.Header)
	if err := h.verifier.Verify(payload, headers); err != nil {
		h.metrics.IncWebhookRejected("clerk")
		h.logger.Warn("webhook_rejected",
			slog.String("source", "clerk"),
			slog.String("svix_id", headers.ID),
			slog.String("reason", err.Error()),
		)
		writeText(w, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	evt, err := webhook.ParseEvent(payload)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	result, err := h.syncer.HandleEvent(r.Context(), evt)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindNotFound, apperr.KindInvalid:
			h.logger.Warn("webhook_event_failed",
				slog.String("type", string(evt.Type)),
				slog.String("error", err.Error()),
			)
			handleServiceError(w, h.logger, err)
		default:
			h.logger.Error("webhook_event_failed",
				slog.String("type", string(evt.Type)),
				slog.String("error", err.Error()),
			)
			writeText(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if !result.Handled {
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Unhandled event type"})
		return
	}

	h.logger.Info("webhook_event_processed",
		slog.String("type", string(evt.Type)),
		slog.String("svix_id", headers.ID),
	)

	writeJSON(w, http.StatusOK, dto.WebhookUserResponse{Message: "OK", User: result.User})
}

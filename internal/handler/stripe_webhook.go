package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/handler/dto"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/payment"
	"github.com/imaginify/imaginify/internal/service"
)

// stripeSignatureHeader carries the payment event signature.
const stripeSignatureHeader = "Stripe-Signature"

// PaymentEventParser verifies and decodes payment events.
type PaymentEventParser interface {
	ParseEvent(payload []byte, signatureHeader string) (*payment.Event, error)
}

// TransactionRecorder records confirmed payments.
type TransactionRecorder interface {
	CreateTransaction(ctx context.Context, input service.CreateTransactionInput) (*model.Transaction, error)
}

// StripeWebhookHandler receives Stripe payment events.
type StripeWebhookHandler struct {
	events       PaymentEventParser
	transactions TransactionRecorder
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler.
func NewStripeWebhookHandler(events PaymentEventParser, transactions TransactionRecorder, logger *slog.Logger, recorder metrics.Recorder) *StripeWebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &StripeWebhookHandler{
		events:       events,
		transactions: transactions,
		logger:       logger,
		metrics:      recorder,
	}
}

// Handle handles POST /api/webhooks/stripe.
func (h *StripeWebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	evt, err := h.events.ParseEvent(payload, r.Header.Get(stripeSignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			h.metrics.IncWebhookRejected("stripe")
			h.logger.Warn("webhook_rejected", slog.String("source", "stripe"), slog.String("reason", err.Error()))
			handleServiceError(w, h.logger, apperr.SignatureInvalid("stripe.webhook", err))
			return
		}
		h.logger.Warn("stripe_event_invalid", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid event payload")
		return
	}

	if evt.Checkout == nil {
		writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Unhandled event type"})
		return
	}

	c := evt.Checkout
	tx, err := h.transactions.CreateTransaction(r.Context(), service.CreateTransactionInput{
		StripeID:  c.SessionID,
		Amount:    c.Amount,
		Plan:      c.Plan,
		Credits:   c.Credits,
		BuyerID:   c.BuyerID,
		CreatedAt: c.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateTransaction) {
			writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Already recorded"})
			return
		}
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("transaction_recorded",
		slog.String("event_id", evt.ID),
		slog.String("transaction_id", tx.ID),
		slog.String("buyer_id", tx.BuyerID),
		slog.Int("credits", tx.Credits),
	)

	writeJSON(w, http.StatusOK, dto.WebhookTransactionResponse{Message: "OK", Transaction: tx})
}

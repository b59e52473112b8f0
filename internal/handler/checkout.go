package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/imaginify/imaginify/internal/handler/dto"
	"github.com/imaginify/imaginify/internal/service"
)

// CheckoutStarter opens hosted payment sessions.
type CheckoutStarter interface {
	Checkout(ctx context.Context, input service.CheckoutInput) (string, error)
}

// CheckoutHandler handles credit purchases.
type CheckoutHandler struct {
	checkout CheckoutStarter
	users    UserReader
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout CheckoutStarter, users UserReader, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		users:    users,
		logger:   logger,
	}
}

// Checkout handles POST /api/v1/checkout and redirects to the hosted
// payment page.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	buyer, err := currentUser(r.Context(), h.users)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	url, err := h.checkout.Checkout(r.Context(), service.CheckoutInput{
		Plan:    req.Plan,
		Amount:  req.Amount,
		Credits: req.Credits,
		BuyerID: buyer.ID,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("checkout_started",
		slog.String("buyer_id", buyer.ID),
		slog.String("plan", req.Plan),
	)

	http.Redirect(w, r, url, http.StatusSeeOther)
}

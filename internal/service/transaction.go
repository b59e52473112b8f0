package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/payment"
	"github.com/imaginify/imaginify/internal/repository"
)

// ErrDuplicateTransaction is returned when a payment was already recorded.
// Credits are not granted a second time.
var ErrDuplicateTransaction = errors.New("transaction already recorded")

// CheckoutGateway opens hosted checkout sessions. A payment.Gateway
// satisfies it.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (string, error)
}

// CreditUpdater adjusts user credit balances. A UserService satisfies it.
type CreditUpdater interface {
	UpdateCredits(ctx context.Context, userID string, delta int) (*model.User, error)
}

// TransactionService handles checkout and credit purchase business logic.
type TransactionService struct {
	transactions TransactionStore
	credits      CreditUpdater
	gateway      CheckoutGateway
	successURL   string
	cancelURL    string
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// TransactionServiceConfig holds the dependencies of a TransactionService.
type TransactionServiceConfig struct {
	Transactions TransactionStore
	Credits      CreditUpdater
	Gateway      CheckoutGateway
	SuccessURL   string
	CancelURL    string
	Logger       *slog.Logger
	Metrics      metrics.Recorder
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(cfg TransactionServiceConfig) *TransactionService {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		transactions: cfg.Transactions,
		credits:      cfg.Credits,
		gateway:      cfg.Gateway,
		successURL:   cfg.SuccessURL,
		cancelURL:    cfg.CancelURL,
		logger:       defaultLogger(cfg.Logger),
		metrics:      recorder,
	}
}

// CheckoutInput describes a credit purchase.
type CheckoutInput struct {
	Plan    string
	Amount  float64 // major currency units
	Credits int
	BuyerID string
}

// CreateTransactionInput describes a confirmed payment.
type CreateTransactionInput struct {
	StripeID  string
	Amount    float64
	Plan      string
	Credits   int
	BuyerID   string
	CreatedAt time.Time
}

// Checkout opens a hosted payment session and returns the URL to send the
// buyer to. The plan, credits and buyer id are echoed back unmodified on the
// completion event.
func (s *TransactionService) Checkout(ctx context.Context, input CheckoutInput) (string, error) {
	const op = "transaction.checkout"

	if strings.TrimSpace(input.Plan) == "" {
		return "", apperr.Invalidf(op, "plan is required")
	}
	if input.Amount <= 0 {
		return "", apperr.Invalidf(op, "amount must be positive")
	}
	if input.Credits <= 0 {
		return "", apperr.Invalidf(op, "credits must be positive")
	}
	if input.BuyerID == "" {
		return "", apperr.Invalidf(op, "buyer id is required")
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Plan:       input.Plan,
		Amount:     input.Amount,
		Credits:    input.Credits,
		BuyerID:    input.BuyerID,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		s.metrics.IncCheckoutStarted("failed")
		s.logger.Error("checkout failed",
			slog.String("buyer_id", input.BuyerID),
			slog.String("plan", input.Plan),
			slog.String("error", err.Error()),
		)
		return "", apperr.Upstream(op, "failed to execute checkout", err)
	}

	s.metrics.IncCheckoutStarted("success")
	return url, nil
}

// CreateTransaction records a confirmed payment and then credits the buyer.
// The two writes are not atomic: if crediting fails the transaction stays
// recorded and the error is returned.
func (s *TransactionService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*model.Transaction, error) {
	const op = "transaction.create"

	tx := &model.Transaction{
		StripeID:  input.StripeID,
		Amount:    input.Amount,
		Plan:      input.Plan,
		Credits:   input.Credits,
		BuyerID:   input.BuyerID,
		CreatedAt: input.CreatedAt,
	}

	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		s.metrics.IncTransactionRecorded("failed")
		switch {
		case errors.Is(err, repository.ErrTransactionExists):
			s.logger.Info("transaction already recorded", slog.String("stripe_id", input.StripeID))
			return nil, ErrDuplicateTransaction
		case errors.Is(err, repository.ErrUserNotFound):
			s.logger.Warn("transaction buyer not found",
				slog.String("stripe_id", input.StripeID),
				slog.String("buyer_id", input.BuyerID),
			)
			return nil, apperr.NotFound(op, "buyer not found")
		}
		s.logger.Error("failed to record transaction",
			slog.String("stripe_id", input.StripeID),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Persistence(op, err)
	}

	if _, err := s.credits.UpdateCredits(ctx, input.BuyerID, input.Credits); err != nil {
		s.metrics.IncTransactionRecorded("failed")
		s.logger.Error("transaction recorded but crediting failed",
			slog.String("transaction_id", tx.ID),
			slog.String("buyer_id", input.BuyerID),
			slog.Int("credits", input.Credits),
			slog.String("error", err.Error()),
		)
		return tx, err
	}

	s.metrics.IncTransactionRecorded("success")
	return tx, nil
}

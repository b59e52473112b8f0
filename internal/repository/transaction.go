package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imaginify/imaginify/internal/model"
)

// ErrTransactionExists is returned when a payment was already recorded.
var ErrTransactionExists = errors.New("transaction already recorded")

// CreateTransaction inserts an immutable transaction record.
func (r *Repository) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == "" {
		tx.ID = newID()
	}

	query := `
		INSERT INTO transactions (id, stripe_id, amount, plan, credits, buyer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.StripeID,
		tx.Amount,
		tx.Plan,
		tx.Credits,
		nullString(tx.BuyerID),
		tx.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTransactionExists
		}
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

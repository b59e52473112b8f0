package model

import "time"

// Transaction records one confirmed credit purchase. Immutable once stored.
type Transaction struct {
	ID        string    `json:"id"`
	StripeID  string    `json:"stripe_id"`
	Amount    float64   `json:"amount"`
	Plan      string    `json:"plan"`
	Credits   int       `json:"credits"`
	BuyerID   string    `json:"buyer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Package payment wraps Stripe hosted checkout and payment confirmation events.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// Metadata keys echoed through a checkout session.
const (
	MetadataPlan    = "plan"
	MetadataCredits = "credits"
	MetadataBuyerID = "buyerId"

	currencyUSD = "usd"
)

// ErrNoSessionURL is returned when Stripe answers without a redirect URL.
var ErrNoSessionURL = errors.New("checkout session has no url")

// SessionCreator creates checkout sessions. session.Client satisfies it.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// CheckoutRequest describes one credit purchase.
type CheckoutRequest struct {
	Plan       string
	Amount     float64 // major currency units
	Credits    int
	BuyerID    string
	SuccessURL string
	CancelURL  string
}

// Gateway creates checkout sessions and verifies payment events.
type Gateway struct {
	sessions      SessionCreator
	webhookSecret string
}

// NewGateway creates a Gateway bound to one Stripe secret key. The key is
// carried by the session client rather than the package-level stripe.Key.
func NewGateway(secretKey, webhookSecret string) *Gateway {
	return NewGatewayWithSessions(
		&session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret,
	)
}

// NewGatewayWithSessions creates a Gateway over an explicit SessionCreator.
func NewGatewayWithSessions(sessions SessionCreator, webhookSecret string) *Gateway {
	return &Gateway{sessions: sessions, webhookSecret: webhookSecret}
}

// CreateCheckoutSession opens a hosted checkout session and returns its URL.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	sess, err := g.sessions.New(CheckoutParams(ctx, req))
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if sess.URL == "" {
		return "", ErrNoSessionURL
	}
	return sess.URL, nil
}

// CheckoutParams builds a one-item payment-mode session for req.
func CheckoutParams(ctx context.Context, req CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currencyUSD),
					UnitAmount: stripe.Int64(MinorUnits(req.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Plan),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataPlan, req.Plan)
	params.AddMetadata(MetadataCredits, strconv.Itoa(req.Credits))
	params.AddMetadata(MetadataBuyerID, req.BuyerID)

	return params
}

// MinorUnits converts a major-unit amount to cents.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// MajorUnits converts cents to a major-unit amount.
func MajorUnits(cents int64) float64 {
	return float64(cents) / 100
}

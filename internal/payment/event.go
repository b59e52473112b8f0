package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// EventCheckoutCompleted is the event that confirms a paid session.
const EventCheckoutCompleted = "checkout.session.completed"

// ErrInvalidSignature is returned when a payment event fails verification.
var ErrInvalidSignature = errors.New("invalid stripe signature")

// CompletedCheckout is the purchase confirmed by a paid checkout session.
type CompletedCheckout struct {
	SessionID string
	Amount    float64 // major currency units
	Plan      string
	Credits   int
	BuyerID   string
	CreatedAt time.Time
}

// Event is a verified payment event. Checkout is set only for
// checkout.session.completed.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
func (g *Gateway) ParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	checkout, err := completedCheckout(&sess)
	if err != nil {
		return nil, err
	}
	out.Checkout = checkout

	return out, nil
}

func completedCheckout(sess *stripe.CheckoutSession) (*CompletedCheckout, error) {
	credits, err := strconv.Atoi(sess.Metadata[MetadataCredits])
	if err != nil {
		return nil, fmt.Errorf("checkout %s: invalid credits metadata: %w", sess.ID, err)
	}

	buyerID := sess.Metadata[MetadataBuyerID]
	if buyerID == "" {
		return nil, fmt.Errorf("checkout %s: missing buyer metadata", sess.ID)
	}

	created := time.Now().UTC()
	if sess.Created > 0 {
		created = time.Unix(sess.Created, 0).UTC()
	}

	return &CompletedCheckout{
		SessionID: sess.ID,
		Amount:    MajorUnits(sess.AmountTotal),
		Plan:      sess.Metadata[MetadataPlan],
		Credits:   credits,
		BuyerID:   buyerID,
		CreatedAt: created,
	}, nil
}

// Package checkout drives the multi-step purchase flow: address, payment
// method, review, and final order placement.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Step of the checkout flow. Transitions are driven by explicit step
// submissions, never by automatic advancement.
type Step string

const (
	StepAddress Step = "address"
	StepPayment Step = "payment"
	StepReview  Step = "review"
)

// Session is the server-side checkout state for one shopper. It replaces the
// untyped session-bag slots with explicit fields and lives in the session
// store until an order is placed.
type Session struct {
	Step             Step   `json:"step"`
	ShippingAddress  string `json:"shipping_address"`
	Phone            string `json:"phone"`
	PaymentMethod    string `json:"payment_method"`
	PaymentIntentRef string `json:"payment_intent_ref"`
}

// NewSession returns an empty session positioned at the address step.
func NewSession() *Session {
	return &Session{Step: StepAddress}
}

// ErrSessionNotFound is returned by Store.Load when no session exists yet.
var ErrSessionNotFound = errors.New("checkout session not found")

// Store persists checkout sessions keyed by account id.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) (*Session, error)
	Save(ctx context.Context, userID uuid.UUID, s *Session) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

package checkout

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/order"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
	"github.com/bazaarlane/storefront/internal/payment"
)

// Workflow-level errors. Validation failures re-render the current step and
// never mutate fields outside the failed submission.
var (
	ErrCartEmpty           = errors.New("your cart is empty")
	ErrPaymentRequired     = errors.New("payment has not been completed")
	ErrPaymentNotConfirmed = errors.New("payment was not successful")
)

// ValidationError reports a failed step submission. The step stays where it
// was and the message is shown to the shopper.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Workflow is the linear checkout state machine. Every operation re-runs the
// empty-cart guard before doing anything else.
type Workflow struct {
	carts    *cart.Service
	sessions Store
	gateway  payment.Gateway
	factory  *order.Factory
	pricing  pricing.Calculator
	currency string
}

// NewWorkflow creates a checkout Workflow with the required collaborators.
func NewWorkflow(
	carts *cart.Service,
	sessions Store,
	gateway payment.Gateway,
	factory *order.Factory,
	calc pricing.Calculator,
	currency string,
) *Workflow {
	return &Workflow{
		carts:    carts,
		sessions: sessions,
		gateway:  gateway,
		factory:  factory,
		pricing:  calc,
		currency: currency,
	}
}

// State is the session plus the priced cart, as shown on every step page.
type State struct {
	Session *Session
	Cart    *cart.Cart
	Quote   pricing.Quote
}

// Enter loads (or starts) the shopper's checkout, refusing entry when the
// cart is empty.
func (w *Workflow) Enter(ctx context.Context, userID uuid.UUID) (*State, error) {
	c, err := w.guardCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	s, err := w.sessions.Load(ctx, userID)
	if errors.Is(err, ErrSessionNotFound) {
		s = NewSession()
		if err := w.sessions.Save(ctx, userID, s); err != nil {
			return nil, errors.Wrap(err, "save session")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "load session")
	}

	return &State{Session: s, Cart: c, Quote: w.quote(c)}, nil
}

// SubmitAddress stores the shipping address and phone and advances to the
// payment step. Blank input keeps the flow at the address step with a
// validation message; the submitted values are still recorded so the form
// re-renders with what the shopper typed.
func (w *Workflow) SubmitAddress(ctx context.Context, userID uuid.UUID, address, phone string) error {
	state, err := w.Enter(ctx, userID)
	if err != nil {
		return err
	}
	s := state.Session

	s.ShippingAddress = address
	s.Phone = phone

	if strings.TrimSpace(address) == "" || strings.TrimSpace(phone) == "" {
		s.Step = StepAddress
		if err := w.sessions.Save(ctx, userID, s); err != nil {
			return errors.Wrap(err, "save session")
		}
		return &ValidationError{Message: "Please fill in all required fields"}
	}

	s.Step = StepPayment
	return w.sessions.Save(ctx, userID, s)
}

// SubmitPayment stores the payment method and advances to the review step.
func (w *Workflow) SubmitPayment(ctx context.Context, userID uuid.UUID, method string) error {
	state, err := w.Enter(ctx, userID)
	if err != nil {
		return err
	}
	s := state.Session

	if strings.TrimSpace(method) == "" {
		s.Step = StepPayment
		if err := w.sessions.Save(ctx, userID, s); err != nil {
			return errors.Wrap(err, "save session")
		}
		return &ValidationError{Message: "Please select a payment method"}
	}

	switch method {
	case order.MethodCreditCard, order.MethodCashOnDelivery:
	default:
		return &ValidationError{Message: "Payment method is not supported"}
	}

	s.PaymentMethod = method
	s.Step = StepReview
	return w.sessions.Save(ctx, userID, s)
}

// CreatePaymentIntent asks the gateway for a new payment intent covering the
// cart's current total and returns the client secret for the browser-side
// card flow. Nothing is persisted: the reference binds at completion.
func (w *Workflow) CreatePaymentIntent(ctx context.Context, userID uuid.UUID) (*payment.Intent, error) {
	state, err := w.Enter(ctx, userID)
	if err != nil {
		return nil, err
	}

	amount := pricing.MinorUnits(state.Quote.Total)
	intent, err := w.gateway.CreateIntent(ctx, amount, w.currency, map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Payment intent created",
		zap.String("reference", intent.Reference),
		zap.Int64("amount_minor", amount))
	return intent, nil
}

// CompletePayment verifies a card payment with the gateway and, only when
// the intent has succeeded, places the order. Any other intent status
// rejects placement with ErrPaymentNotConfirmed: no order, no stock change,
// and the session keeps its address and method so the shopper can retry.
func (w *Workflow) CompletePayment(ctx context.Context, userID uuid.UUID, intentRef string) (*order.Order, error) {
	state, err := w.Enter(ctx, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(intentRef) == "" {
		return nil, &ValidationError{Message: "Payment information is missing"}
	}

	intent, err := w.gateway.RetrieveIntent(ctx, intentRef)
	if err != nil {
		return nil, err
	}
	if !intent.Confirmed() {
		zctx.From(ctx).Warn("Payment intent not confirmed",
			zap.String("reference", intentRef),
			zap.String("status", intent.Status))
		return nil, errors.Wrapf(ErrPaymentNotConfirmed, "status %s", intent.Status)
	}

	state.Session.PaymentIntentRef = intent.Reference
	return w.placeOrder(ctx, userID, state, intent.Reference)
}

// Confirm places the order for non-card payment methods. A credit-card
// checkout without a confirmed payment reference is sent back to the
// payment step instead.
func (w *Workflow) Confirm(ctx context.Context, userID uuid.UUID) (*order.Order, error) {
	state, err := w.Enter(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := state.Session

	if s.PaymentMethod == order.MethodCreditCard && s.PaymentIntentRef == "" {
		return nil, ErrPaymentRequired
	}

	return w.placeOrder(ctx, userID, state, s.PaymentIntentRef)
}

// placeOrder runs the Order Factory and clears the checkout session
// unconditionally on success, regardless of payment method.
func (w *Workflow) placeOrder(ctx context.Context, userID uuid.UUID, state *State, paymentRef string) (*order.Order, error) {
	s := state.Session
	ship := order.ShippingDetails{
		Address:       s.ShippingAddress,
		Phone:         s.Phone,
		PaymentMethod: s.PaymentMethod,
	}

	o, err := w.factory.Place(ctx, state.Cart, ship, paymentRef)
	if err != nil {
		return nil, err
	}

	if err := w.sessions.Clear(ctx, userID); err != nil {
		// The order exists; a stale session is an inconvenience, not a
		// failure. Log and move on.
		zctx.From(ctx).Error("Clear checkout session", zap.Error(err))
	}

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID.String()),
		zap.String("payment_method", o.PaymentMethod))
	return o, nil
}

func (w *Workflow) guardCart(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := w.carts.ForUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}
	return c, nil
}

func (w *Workflow) quote(c *cart.Cart) pricing.Quote {
	items := make([]pricing.Item, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = pricing.Item{UnitPrice: line.Product.Price, Quantity: line.Quantity}
	}
	return w.pricing.Quote(items)
}

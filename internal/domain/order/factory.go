package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
)

// Payment methods accepted at checkout.
const (
	MethodCreditCard     = "credit_card"
	MethodCashOnDelivery = "cash_on_delivery"
)

// ShippingDetails carries the validated checkout data into order placement.
type ShippingDetails struct {
	Address       string
	Phone         string
	PaymentMethod string
}

// ValidationError reports order-header validation failures. Placement aborts
// with no side effects and the caller re-displays the messages.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// Factory is the transactional boundary for order creation. It recomputes
// the total from the live cart, snapshots prices into lines, and delegates
// the all-or-nothing write set to the repository.
type Factory struct {
	orders  Repository
	pricing pricing.Calculator
}

// NewFactory creates a Factory with the given repository and calculator.
func NewFactory(orders Repository, calc pricing.Calculator) *Factory {
	return &Factory{orders: orders, pricing: calc}
}

// Place creates an order from the cart and checkout details. The total is
// always recomputed server-side; a client-supplied amount is never trusted.
// paymentRef is the confirmed gateway reference for card payments, empty
// otherwise. On success the cart has been emptied and stock decremented.
func (f *Factory) Place(ctx context.Context, c *cart.Cart, ship ShippingDetails, paymentRef string) (*Order, error) {
	if c.IsEmpty() {
		return nil, &ValidationError{Messages: []string{"cart is empty"}}
	}
	if err := validateShipping(ship); err != nil {
		return nil, err
	}

	items := make([]pricing.Item, len(c.Lines))
	lines := make([]Line, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = pricing.Item{UnitPrice: line.Product.Price, Quantity: line.Quantity}
		lines[i] = Line{
			ID:          uuid.New(),
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
		}
	}
	quote := f.pricing.Quote(items)

	o := &Order{
		ID:               uuid.New(),
		UserID:           derefUser(c.UserID),
		Status:           StatusPending,
		TotalAmount:      quote.Total,
		ShippingAddress:  ship.Address,
		Phone:            ship.Phone,
		PaymentMethod:    ship.PaymentMethod,
		PaymentIntentRef: paymentRef,
		Lines:            lines,
	}
	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
	}

	if err := f.orders.Place(ctx, o, c.ID); err != nil {
		return nil, errors.Wrap(err, "place order")
	}
	return o, nil
}

// UpdateStatus applies an admin status change. Completed orders are
// immutable: the attempt is rejected, never silently ignored.
func (f *Factory) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	o, err := f.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Completed() {
		return ErrOrderCompleted
	}

	return f.orders.UpdateStatus(ctx, id, status)
}

func validateShipping(ship ShippingDetails) error {
	var msgs []string
	if strings.TrimSpace(ship.Address) == "" {
		msgs = append(msgs, "shipping address can't be blank")
	}
	if strings.TrimSpace(ship.Phone) == "" {
		msgs = append(msgs, "phone can't be blank")
	}
	switch ship.PaymentMethod {
	case MethodCreditCard, MethodCashOnDelivery:
	default:
		msgs = append(msgs, "payment method is not supported")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

func derefUser(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

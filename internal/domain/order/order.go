// Package order holds the order domain: the immutable purchase record, the
// transactional placement factory, and the admin status rules.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status of an order. Completed is terminal: once reached, the order rejects
// every further status update.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known order status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Sentinel errors for order placement and mutation.
var (
	ErrNotFound         = errors.New("order not found")
	ErrOrderCompleted   = errors.New("cannot update status of a completed order")
	ErrInvalidStatus    = errors.New("unknown order status")
	ErrStockConflict    = errors.New("insufficient stock for a concurrent purchase")
	ErrDuplicatePayment = errors.New("an order already exists for this payment")
)

// Order is the record of a completed purchase intent. TotalAmount and the
// line prices are snapshots taken at creation; later catalog price changes
// never alter an existing order. Orders outlive their account: UserID is
// uuid.Nil once the account has been deleted.
type Order struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Status           Status
	TotalAmount      decimal.Decimal
	ShippingAddress  string
	Phone            string
	PaymentMethod    string
	PaymentIntentRef string
	Lines            []Line
	CreatedAt        time.Time
}

// Completed reports whether the order has reached its terminal status.
func (o *Order) Completed() bool {
	return o.Status == StatusCompleted
}

// Line is one product+quantity+price-at-purchase pairing within an order.
// UnitPrice is copied from the product at purchase time and is immutable.
type Line struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Place atomically creates the order header and lines, decrements each
	// product's stock with a floor guard, and empties the cart — all inside
	// one transaction. Either every write happens or none do. A stock
	// decrement that would go below zero fails the whole transaction with
	// ErrStockConflict; a reused payment reference fails it with
	// ErrDuplicatePayment.
	Place(ctx context.Context, o *Order, cartID uuid.UUID) error
	// Get returns an order with its lines, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByUser returns the account's orders, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// List returns all orders, most recent first (admin).
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus sets an order's status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

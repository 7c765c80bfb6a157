// Package cart holds the shopping cart domain: per-account and guest carts,
// their lines, and the stock-aware mutation rules.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/bazaarlane/storefront/internal/domain/product"
)

// Sentinel errors for cart mutations.
var (
	ErrNotFound          = errors.New("cart not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
)

// Cart is a transient collection of desired purchase lines. UserID is nil for
// guest carts, which are bound to the browser via the cart_id cookie slot.
type Cart struct {
	ID     uuid.UUID
	UserID *uuid.UUID
	Lines  []Line
}

// Line is one product+quantity pairing within a cart. Product carries the
// live catalog row so totals always reflect current prices.
type Line struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Product   product.Product
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Repository defines persistence operations for carts and their lines.
// Implementations load each line's product row alongside the line.
type Repository interface {
	// FindOrCreateByUser returns the account's cart, creating it lazily.
	FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Get returns a cart by id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Cart, error)
	// CreateGuest creates an unowned cart for a guest session.
	CreateGuest(ctx context.Context) (*Cart, error)
	// GetLine returns a single line with its product, or ErrLineNotFound.
	GetLine(ctx context.Context, lineID uuid.UUID) (*Line, error)
	// UpsertLine creates the (cart, product) line or replaces its quantity.
	UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	// UpdateLineQuantity sets an existing line's quantity.
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	// DeleteLine removes a line unconditionally.
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	// Clear deletes all lines of a cart. The cart record itself persists.
	Clear(ctx context.Context, cartID uuid.UUID) error
}

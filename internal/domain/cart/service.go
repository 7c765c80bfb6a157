package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/product"
)

// QuantityDelta is the only step size ChangeQuantity accepts.
type QuantityDelta int

const (
	Increment QuantityDelta = 1
	Decrement QuantityDelta = -1
)

// Service enforces the cart's stock-based quantity rules. Stock checks here
// cap quantities logically; real inventory is only decremented at order
// placement.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service with the required repositories.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// ForUser returns the account's cart, creating it lazily on first use.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	return s.carts.FindOrCreateByUser(ctx, userID)
}

// ForGuest returns the guest cart with the given id, creating a fresh one
// when the id is nil or stale.
func (s *Service) ForGuest(ctx context.Context, cartID uuid.UUID) (*Cart, error) {
	if cartID != uuid.Nil {
		c, err := s.carts.Get(ctx, cartID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.carts.CreateGuest(ctx)
}

// AddLine adds quantity units of a product to the cart, creating the line or
// incrementing an existing one. It fails with ErrOutOfStock when the product
// has no stock and with ErrInsufficientStock when the requested (or
// cumulative) quantity exceeds current stock; in both cases the existing
// line is left unchanged.
func (s *Service) AddLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	p, err := s.products.GetActive(ctx, productID)
	if err != nil {
		return err
	}
	if p.StockQuantity == 0 {
		return ErrOutOfStock
	}
	if quantity > p.StockQuantity {
		return ErrInsufficientStock
	}

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return err
	}

	for _, line := range c.Lines {
		if line.ProductID != productID {
			continue
		}
		next := line.Quantity + quantity
		if next > p.StockQuantity {
			return ErrInsufficientStock
		}
		return s.carts.UpdateLineQuantity(ctx, line.ID, next)
	}

	return s.carts.UpsertLine(ctx, cartID, productID, quantity)
}

// ChangeQuantity steps a line's quantity by +1 or -1. Decrementing clamps at
// a floor of 1 (it never removes the line); incrementing past the product's
// stock is a no-op signalled with ErrInsufficientStock.
func (s *Service) ChangeQuantity(ctx context.Context, lineID uuid.UUID, delta QuantityDelta) error {
	line, err := s.carts.GetLine(ctx, lineID)
	if err != nil {
		return err
	}

	switch delta {
	case Increment:
		if line.Quantity+1 > line.Product.StockQuantity {
			return ErrInsufficientStock
		}
		return s.carts.UpdateLineQuantity(ctx, lineID, line.Quantity+1)
	case Decrement:
		if line.Quantity <= 1 {
			return nil
		}
		return s.carts.UpdateLineQuantity(ctx, lineID, line.Quantity-1)
	default:
		return errors.Errorf("unsupported quantity delta %d", delta)
	}
}

// RemoveLine deletes a line unconditionally.
func (s *Service) RemoveLine(ctx context.Context, lineID uuid.UUID) error {
	return s.carts.DeleteLine(ctx, lineID)
}

// Totals recomputes the cart total from live product prices on every call;
// nothing is cached.
func (s *Service) Totals(ctx context.Context, cartID uuid.UUID) (decimal.Decimal, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(c), nil
}

// Total sums quantity x live price over the cart's lines.
func Total(c *Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Package product holds the catalog domain: products, categories, and their
// read/write repositories.
package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups and writes.
var (
	ErrNotFound          = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateCategory = errors.New("category name already taken")
)

// Product represents a catalog item available for purchase. Price and
// StockQuantity are the live values; orders snapshot them at purchase time.
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
	ImagePath     string
	Categories    []Category
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups products for browsing and related-product lookup.
type Category struct {
	ID   uuid.UUID
	Name string
}

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	// Category matches products having a category whose name contains the
	// given term, case-insensitive.
	Category string
	// Query free-text searches product name, description, and category name,
	// case-insensitive.
	Query string
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// ListActive returns active products matching the filter.
	ListActive(ctx context.Context, f Filter) ([]Product, error)
	// GetActive returns an active product by id, or ErrNotFound.
	GetActive(ctx context.Context, id uuid.UUID) (*Product, error)
	// Get returns any product by id regardless of the active flag (admin).
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	// List returns the full catalog including inactive products (admin).
	List(ctx context.Context) ([]Product, error)
	// Related returns up to limit active products sharing at least one
	// category with the given product, excluding the product itself.
	Related(ctx context.Context, id uuid.UUID, limit int) ([]Product, error)

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ValidationError reports one or more field-level validation failures. The
// caller re-presents the messages to the user; nothing is persisted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+" "+msg)
	}
	return strings.Join(msgs, ", ")
}

// Validate checks the product's invariants and returns a ValidationError
// listing every violated field, or nil when the product is well-formed.
func (p *Product) Validate() error {
	fields := make(map[string]string)

	switch n := len(strings.TrimSpace(p.Name)); {
	case n == 0:
		fields["name"] = "can't be blank"
	case n < 3 || n > 100:
		fields["name"] = "must be between 3 and 100 characters"
	}

	if len(strings.TrimSpace(p.Description)) < 10 {
		fields["description"] = "must be at least 10 characters"
	}

	if !p.Price.IsPositive() {
		fields["price"] = "must be greater than 0"
	}

	if p.StockQuantity < 0 {
		fields["stock_quantity"] = "must be greater than or equal to 0"
	}

	if len(p.Categories) == 0 {
		fields["categories"] = "must have at least one category selected"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

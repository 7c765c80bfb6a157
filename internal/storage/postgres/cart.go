package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarlane/storefront/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Every cart
// load joins the live product row into each line.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// FindOrCreateByUser returns the account's cart, creating it on first use.
// The upsert makes concurrent first requests converge on one cart.
func (r *CartRepository) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	const q = `INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) WHERE user_id IS NOT NULL
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&id); err != nil {
		return nil, fmt.Errorf("finding cart for user %s: %w", userID, err)
	}
	return r.Get(ctx, id)
}

// Get returns a cart with its lines and their products, or cart.ErrNotFound.
func (r *CartRepository) Get(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	err := r.pool.QueryRow(ctx, `SELECT id, user_id FROM carts WHERE id = $1`, id).
		Scan(&c.ID, &c.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart %s: %w", id, err)
	}

	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Lines = lines
	return &c, nil
}

// CreateGuest creates an unowned cart.
func (r *CartRepository) CreateGuest(ctx context.Context) (*cart.Cart, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `INSERT INTO carts (user_id) VALUES (NULL) RETURNING id`).
		Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("creating guest cart: %w", err)
	}
	return &cart.Cart{ID: id}, nil
}

// GetLine returns a single line with its product, or cart.ErrLineNotFound.
func (r *CartRepository) GetLine(ctx context.Context, lineID uuid.UUID) (*cart.Line, error) {
	const q = `SELECT cl.id, cl.product_id, cl.quantity, ` + productColumns + `
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.id = $1`

	var line cart.Line
	err := r.pool.QueryRow(ctx, q, lineID).Scan(
		&line.ID, &line.ProductID, &line.Quantity,
		&line.Product.ID, &line.Product.Name, &line.Product.Description,
		&line.Product.Price, &line.Product.StockQuantity, &line.Product.Active,
		&line.Product.ImagePath, &line.Product.CreatedAt, &line.Product.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart line %s: %w", lineID, err)
	}
	return &line, nil
}

// UpsertLine creates the (cart, product) line or replaces its quantity.
func (r *CartRepository) UpsertLine(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	const q = `INSERT INTO cart_lines (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	if _, err := r.pool.Exec(ctx, q, cartID, productID, quantity); err != nil {
		return fmt.Errorf("upserting cart line: %w", err)
	}
	return nil
}

// UpdateLineQuantity sets an existing line's quantity.
func (r *CartRepository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity = $2 WHERE id = $1`, lineID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// DeleteLine removes a line.
func (r *CartRepository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("deleting cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear deletes all lines of a cart. The cart record itself persists.
func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clearing cart %s: %w", cartID, err)
	}
	return nil
}

func (r *CartRepository) lines(ctx context.Context, cartID uuid.UUID) ([]cart.Line, error) {
	const q = `SELECT cl.id, cl.product_id, cl.quantity, ` + productColumns + `
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.cart_id = $1
		ORDER BY p.name`

	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, fmt.Errorf("loading cart lines: %w", err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var line cart.Line
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.Quantity,
			&line.Product.ID, &line.Product.Name, &line.Product.Description,
			&line.Product.Price, &line.Product.StockQuantity, &line.Product.Active,
			&line.Product.ImagePath, &line.Product.CreatedAt, &line.Product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading cart lines: %w", err)
	}
	return lines, nil
}

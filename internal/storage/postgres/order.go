package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarlane/storefront/internal/domain/order"
)

const orderColumns = `o.id, o.user_id, o.status, o.total_amount, o.shipping_address, o.phone, o.payment_method, o.payment_intent_ref, o.created_at`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Place runs order creation as one transaction: header, lines, a guarded
// stock decrement per product, and the cart wipe. A decrement that would go
// below zero affects no rows and fails the whole transaction with
// order.ErrStockConflict; a reused payment reference trips the partial
// unique index and fails it with order.ErrDuplicatePayment.
func (r *OrderRepository) Place(ctx context.Context, o *order.Order, cartID uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders
			(id, user_id, status, total_amount, shipping_address, phone, payment_method, payment_intent_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.Exec(ctx, insertOrder,
			o.ID, o.UserID, o.Status, o.TotalAmount,
			o.ShippingAddress, o.Phone, o.PaymentMethod, o.PaymentIntentRef,
		); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		const insertLine = `INSERT INTO order_lines
			(id, order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`
		const decrementStock = `UPDATE products
			SET stock_quantity = stock_quantity - $2, updated_at = now()
			WHERE id = $1 AND stock_quantity >= $2`

		for _, line := range o.Lines {
			if _, err := tx.Exec(ctx, insertLine,
				line.ID, line.OrderID, line.ProductID,
				line.ProductName, line.Quantity, line.UnitPrice,
			); err != nil {
				return fmt.Errorf("inserting order line: %w", err)
			}

			tag, err := tx.Exec(ctx, decrementStock, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for %s: %w", line.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				return order.ErrStockConflict
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		return nil
	})

	if isUniqueViolation(err, "orders_payment_intent_ref_key") {
		return order.ErrDuplicatePayment
	}
	return err
}

// Get returns an order with its lines, or order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

// ListByUser returns the account's orders, most recent first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.user_id = $1 ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, q, userID)
}

// List returns all orders, most recent first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders o ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, q)
}

// UpdateStatus sets an order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, q string, args ...any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// scanOrder reads one order row. user_id is NULL for orders whose account has
// been deleted; those map to uuid.Nil.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var userID *uuid.UUID
	if err := row.Scan(
		&o.ID, &userID, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &o.Phone, &o.PaymentMethod, &o.PaymentIntentRef, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if userID != nil {
		o.UserID = *userID
	}
	return &o, nil
}

func (r *OrderRepository) lines(ctx context.Context, orderID uuid.UUID) ([]order.Line, error) {
	const q = `SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY product_name`

	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading order lines: %w", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var line order.Line
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ProductID,
			&line.ProductName, &line.Quantity, &line.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading order lines: %w", err)
	}
	return lines, nil
}

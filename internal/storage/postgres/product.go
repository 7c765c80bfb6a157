package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarlane/storefront/internal/domain/product"
)

const productColumns = `p.id, p.name, p.description, p.price, p.stock_quantity, p.active, p.image_path, p.created_at, p.updated_at`

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListActive returns active products matching the filter, newest first.
func (r *ProductRepository) ListActive(ctx context.Context, f product.Filter) ([]product.Product, error) {
	const q = `SELECT DISTINCT ` + productColumns + `
		FROM products p
		LEFT JOIN product_categories pc ON pc.product_id = p.id
		LEFT JOIN categories c ON c.id = pc.category_id
		WHERE p.active
		  AND ($1 = '' OR c.name ILIKE '%' || $1 || '%')
		  AND ($2 = ''
		       OR p.name ILIKE '%' || $2 || '%'
		       OR p.description ILIKE '%' || $2 || '%'
		       OR c.name ILIKE '%' || $2 || '%')
		ORDER BY p.created_at DESC, p.id`

	return r.queryProducts(ctx, q, f.Category, f.Query)
}

// GetActive returns an active product by id, or product.ErrNotFound.
func (r *ProductRepository) GetActive(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1 AND p.active`
	return r.getProduct(ctx, q, id)
}

// Get returns any product by id regardless of the active flag.
func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	return r.getProduct(ctx, q, id)
}

// List returns the full catalog including inactive products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products p ORDER BY p.created_at DESC, p.id`
	return r.queryProducts(ctx, q)
}

// Related returns up to limit active products sharing a category with the
// given product.
func (r *ProductRepository) Related(ctx context.Context, id uuid.UUID, limit int) ([]product.Product, error) {
	const q = `SELECT DISTINCT ` + productColumns + `
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE p.active
		  AND p.id <> $1
		  AND pc.category_id IN (
		      SELECT category_id FROM product_categories WHERE product_id = $1)
		ORDER BY p.id
		LIMIT $2`

	return r.queryProducts(ctx, q, id, limit)
}

// Create inserts a product and its category links in one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO products (id, name, description, price, stock_quantity, active, image_path)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.Exec(ctx, q,
			p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.Active, p.ImagePath,
		); err != nil {
			return fmt.Errorf("inserting product: %w", err)
		}
		return linkCategories(ctx, tx, p)
	})
}

// Update rewrites the product row and replaces its category links.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `UPDATE products
			SET name = $2, description = $3, price = $4, stock_quantity = $5,
			    active = $6, image_path = $7, updated_at = now()
			WHERE id = $1`
		tag, err := tx.Exec(ctx, q,
			p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.Active, p.ImagePath,
		)
		if err != nil {
			return fmt.Errorf("updating product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return product.ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clearing category links: %w", err)
		}
		return linkCategories(ctx, tx, p)
	})
}

// Delete removes a product; links cascade.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func linkCategories(ctx context.Context, tx pgx.Tx, p *product.Product) error {
	for _, c := range p.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
			p.ID, c.ID,
		); err != nil {
			return fmt.Errorf("linking category %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *ProductRepository) getProduct(ctx context.Context, q string, id uuid.UUID) (*product.Product, error) {
	row := r.pool.QueryRow(ctx, q, id)

	var p product.Product
	if err := scanProduct(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}

	cats, err := r.categoriesFor(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	p.Categories = cats[p.ID]
	return &p, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, q string, args ...any) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []product.Product
	var ids []uuid.UUID
	for rows.Next() {
		var p product.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	cats, err := r.categoriesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Categories = cats[products[i].ID]
	}
	return products, nil
}

// categoriesFor loads category rows for the given products in one query.
func (r *ProductRepository) categoriesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]product.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const q = `SELECT pc.product_id, c.id, c.name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.name`

	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]product.Category, len(ids))
	for rows.Next() {
		var productID uuid.UUID
		var c product.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out[productID] = append(out[productID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	return out, nil
}

func scanProduct(row pgx.Row, p *product.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.Active, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt,
	)
}

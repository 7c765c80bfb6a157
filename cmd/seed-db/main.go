// Command seed-db loads the product catalog and a back-office admin account
// into the database. The catalog is a gzip-compressed JSON array so large
// dumps can be imported without staging an uncompressed copy; entries are
// decoded as a stream and upserted by a small worker pool, making the tool
// safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/bazaarlane/storefront/internal/storage/postgres"
)

const progressEvery = 100

// catalogProduct is one entry of the catalog file. Categories are referenced
// by name and created on demand.
type catalogProduct struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Active        *bool           `json:"active"`
	ImagePath     string          `json:"image_path"`
	Categories    []string        `json:"categories"`
}

func main() {
	var (
		databaseURL   string
		catalogFile   string
		workers       int
		adminName     string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json.gz", "path to gzip-compressed catalog JSON file")
	flag.IntVar(&workers, "workers", 4, "number of concurrent catalog writers")
	flag.StringVar(&adminName, "admin-name", "Administrator", "name for the seeded admin account")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the seeded admin account (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or STORE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, workers, adminName, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string, workers int, adminName, adminEmail, adminPassword string) error {
	slog.Info("running migrations")

	if err := postgres.RunMigrations(databaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := seedCatalog(ctx, pool, catalogFile, workers); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedAdmin(ctx, pool, adminName, adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin account")
	}

	return nil
}

// seedCatalog streams the compressed catalog and fans entries out to a pool
// of upsert workers.
func seedCatalog(ctx context.Context, pool *pgxpool.Pool, path string, workers int) error {
	slog.Info("reading catalog file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	items := make(chan catalogProduct)
	cats := newCategoryCache(pool)
	var count atomic.Int64

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(items)

		dec := json.NewDecoder(gz)
		if _, err := dec.Token(); err != nil {
			return errors.Wrap(err, "read catalog array start")
		}
		for dec.More() {
			var p catalogProduct
			if err := dec.Decode(&p); err != nil {
				return errors.Wrap(err, "decode catalog entry")
			}
			select {
			case items <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if _, err := dec.Token(); err != nil {
			return errors.Wrap(err, "read catalog array end")
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for p := range items {
				if err := upsertProduct(ctx, pool, cats, p); err != nil {
					return errors.Wrapf(err, "upsert product %q", p.Name)
				}
				if n := count.Add(1); n%progressEvery == 0 {
					slog.Info("catalog progress", slog.Int64("products", n))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("catalog seeded", slog.Int64("products", count.Load()))
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, cats *categoryCache, p catalogProduct) error {
	active := true
	if p.Active != nil {
		active = *p.Active
	}

	// Catalog entries are keyed by name; the same file can be imported again
	// after editing prices or stock levels.
	var id uuid.UUID
	err := pool.QueryRow(ctx, `SELECT id FROM products WHERE name = $1`, p.Name).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		const q = `INSERT INTO products (name, description, price, stock_quantity, active, image_path)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := pool.QueryRow(ctx, q,
			p.Name, p.Description, p.Price, p.StockQuantity, active, p.ImagePath,
		).Scan(&id); err != nil {
			return errors.Wrap(err, "insert")
		}
	case err != nil:
		return errors.Wrap(err, "look up by name")
	default:
		const q = `UPDATE products
			SET description = $2, price = $3, stock_quantity = $4, active = $5,
			    image_path = $6, updated_at = now()
			WHERE id = $1`
		if _, err := pool.Exec(ctx, q,
			id, p.Description, p.Price, p.StockQuantity, active, p.ImagePath,
		); err != nil {
			return errors.Wrap(err, "update")
		}
	}

	for _, name := range p.Categories {
		catID, err := cats.resolve(ctx, name)
		if err != nil {
			return errors.Wrapf(err, "resolve category %q", name)
		}
		const q = `INSERT INTO product_categories (product_id, category_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := pool.Exec(ctx, q, id, catID); err != nil {
			return errors.Wrapf(err, "link category %q", name)
		}
	}

	return nil
}

// categoryCache upserts categories by name on first use and remembers their
// ids, so the upsert workers hit the categories table once per name.
type categoryCache struct {
	pool *pgxpool.Pool

	mu  sync.Mutex
	ids map[string]uuid.UUID
}

func newCategoryCache(pool *pgxpool.Pool) *categoryCache {
	return &categoryCache{pool: pool, ids: make(map[string]uuid.UUID)}
}

func (c *categoryCache) resolve(ctx context.Context, name string) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[name]; ok {
		return id, nil
	}

	const q = `INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var id uuid.UUID
	if err := c.pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	c.ids[name] = id
	return id, nil
}

// seedAdmin creates the back-office account, or rotates its password when it
// already exists.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	slog.Info("seeding admin account", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	const q = `INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, lower($2), $3, 'admin')
		ON CONFLICT (lower(email)) DO UPDATE
		SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash,
		    role = 'admin', updated_at = now()`

	if _, err := pool.Exec(ctx, q, name, email, string(hash)); err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	slog.Info("admin account ready", slog.String("email", email))
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarlane/storefront/internal/domain/user"
)

const userColumns = `id, name, email, password_hash, role, COALESCE(password_reset_token, ''), password_reset_sent_at, created_at`

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts an account, or user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	const q = `INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, q, u.ID, u.Name, u.Email, string(u.PasswordHash), u.Role)
	if isUniqueViolation(err, "users_email_key") {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Get returns an account by id, or user.ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getUser(ctx, q, id)
}

// GetByEmail returns an account by lowercase email, or user.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1`
	return r.getUser(ctx, q, email)
}

// GetByResetToken returns the account holding the hashed reset token, or
// user.ErrNotFound.
func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE password_reset_token = $1`
	return r.getUser(ctx, q, tokenHash)
}

// Update persists the mutable account fields.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	const q = `UPDATE users
		SET name = $2, email = $3, password_hash = $4,
		    password_reset_token = NULLIF($5, ''), password_reset_sent_at = $6,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q,
		u.ID, u.Name, u.Email, string(u.PasswordHash), u.ResetTokenHash, u.ResetSentAt)
	if isUniqueViolation(err, "users_email_key") {
		return user.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Delete removes an account. The cart cascades; orders remain as historical
// records with user_id cleared.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ListCustomers returns all customer accounts, newest first.
func (r *UserRepository) ListCustomers(ctx context.Context) ([]user.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users
		WHERE role = 'customer' ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return out, nil
}

func (r *UserRepository) getUser(ctx context.Context, q string, arg any) (*user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var hash string
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &hash, &u.Role,
		&u.ResetTokenHash, &u.ResetSentAt, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.PasswordHash = []byte(hash)
	return &u, nil
}

// Package user holds accounts: registration, authentication, profile
// management, and password reset.
package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Role of an account. Admins manage the back office; customers shop.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Sentinel errors for account operations.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email address already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminImmutable     = errors.New("admin accounts cannot be deleted")
	ErrResetInvalid       = errors.New("password reset token is invalid")
	ErrResetExpired       = errors.New("password reset token has expired")
)

// User is an account. Email is stored lowercase and unique. ResetTokenHash
// holds the SHA-256 of the last issued reset token; the plaintext token is
// never persisted.
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PasswordHash   []byte
	Role           Role
	ResetTokenHash string
	ResetSentAt    *time.Time
	CreatedAt      time.Time
}

// Admin reports whether the account holds the admin role.
func (u *User) Admin() bool {
	return u.Role == RoleAdmin
}

// Repository defines persistence operations for accounts.
type Repository interface {
	// Create inserts a new account, or ErrEmailTaken.
	Create(ctx context.Context, u *User) error
	// Get returns an account by id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByEmail returns an account by lowercase email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByResetToken returns the account holding the hashed reset token,
	// or ErrNotFound.
	GetByResetToken(ctx context.Context, tokenHash string) (*User, error)
	// Update persists name, email, password hash, and reset token fields.
	Update(ctx context.Context, u *User) error
	// Delete removes an account.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListCustomers returns all customer accounts, newest first.
	ListCustomers(ctx context.Context) ([]User, error)
}

// Mailer delivers account mail. The plaintext reset token passes through
// here and nowhere else.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

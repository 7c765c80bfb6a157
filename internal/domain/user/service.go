package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError reports field-level account validation failures.
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

// Service implements account operations on top of the repository.
type Service struct {
	users  Repository
	mailer Mailer

	now      func() time.Time
	newToken func() (string, error)
}

// NewService creates an account Service.
func NewService(users Repository, mailer Mailer) *Service {
	return &Service{
		users:    users,
		mailer:   mailer,
		now:      time.Now,
		newToken: randomToken,
	}
}

// Register creates a customer account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	if err := validateAccount(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         RoleCustomer,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies the email/password pair. Both an unknown email and a
// wrong password yield the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.Get(ctx, id)
}

// UpdateProfile changes an account's name and email.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (*User, error) {
	fields := make(map[string]string)
	validateName(name, fields)
	validateEmail(email, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Name = strings.TrimSpace(name)
	u.Email = normalizeEmail(email)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a customer account. Admin accounts are immutable: the
// attempt is rejected with ErrAdminImmutable and nothing changes.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Admin() {
		return ErrAdminImmutable
	}
	return s.users.Delete(ctx, id)
}

// ListCustomers returns all customer accounts for the back office.
func (s *Service) ListCustomers(ctx context.Context) ([]User, error) {
	return s.users.ListCustomers(ctx)
}

// StartReset issues a password reset token and mails it. An unknown email is
// deliberately indistinguishable from a known one: the caller always gets a
// nil error.
func (s *Service) StartReset(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		zctx.From(ctx).Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := s.newToken()
	if err != nil {
		return errors.Wrap(err, "generate token")
	}

	sentAt := s.now()
	u.ResetTokenHash = hashToken(token)
	u.ResetSentAt = &sentAt
	if err := s.users.Update(ctx, u); err != nil {
		return errors.Wrap(err, "store token")
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}

// CompleteReset sets a new password for the account holding the token. The
// token is single-use and expires one hour after issuance.
func (s *Service) CompleteReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrResetInvalid
	}

	u, err := s.users.GetByResetToken(ctx, hashToken(token))
	if errors.Is(err, ErrNotFound) {
		return ErrResetInvalid
	}
	if err != nil {
		return err
	}

	if u.ResetSentAt == nil || s.now().Sub(*u.ResetSentAt) > ResetTokenTTL {
		return ErrResetExpired
	}

	fields := make(map[string]string)
	validatePassword(newPassword, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	u.PasswordHash = hash
	u.ResetTokenHash = ""
	u.ResetSentAt = nil
	return s.users.Update(ctx, u)
}

func validateAccount(name, email, password string) error {
	fields := make(map[string]string)
	validateName(name, fields)
	validateEmail(email, fields)
	validatePassword(password, fields)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateName(name string, fields map[string]string) {
	switch n := len(strings.TrimSpace(name)); {
	case n == 0:
		fields["name"] = "can't be blank"
	case n < 2 || n > 50:
		fields["name"] = "must be between 2 and 50 characters"
	}
}

func validateEmail(email string, fields map[string]string) {
	if !emailPattern.MatchString(normalizeEmail(email)) {
		fields["email"] = "is not a valid email address"
	}
}

func validatePassword(password string, fields map[string]string) {
	if len(password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LogMailer writes reset mail to the log instead of delivering it. Actual
// delivery belongs to an external consumer.
type LogMailer struct{}

var _ Mailer = LogMailer{}

// SendPasswordReset logs the reset notification. The token itself is not
// logged.
func (LogMailer) SendPasswordReset(ctx context.Context, email, _ string) error {
	zctx.From(ctx).Info("Password reset email queued", zap.String("email", email))
	return nil
}

package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
	"github.com/bazaarlane/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	placed     *Order
	placeCalls int
	placeErr   error

	byID      map[uuid.UUID]*Order
	statusSet Status
	updateErr error
}

func (m *mockOrderRepo) Place(_ context.Context, o *Order, _ uuid.UUID) error {
	m.placeCalls++
	if m.placeErr != nil {
		return m.placeErr
	}
	m.placed = o
	return nil
}

func (m *mockOrderRepo) Get(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(context.Context, uuid.UUID) ([]Order, error) { return nil, nil }
func (m *mockOrderRepo) List(context.Context) ([]Order, error)                  { return nil, nil }

func (m *mockOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusSet = status
	return nil
}

// --- Helpers ---

func testCart(userID uuid.UUID, lines ...cart.Line) *cart.Cart {
	return &cart.Cart{ID: uuid.New(), UserID: &userID, Lines: lines}
}

func testLine(price string, qty int) cart.Line {
	id := uuid.New()
	return cart.Line{
		ID:        uuid.New(),
		ProductID: id,
		Quantity:  qty,
		Product: product.Product{
			ID:            id,
			Name:          "Widget",
			Price:         decimal.RequireFromString(price),
			StockQuantity: qty,
		},
	}
}

func validShipping() ShippingDetails {
	return ShippingDetails{
		Address:       "123 Test St",
		Phone:         "1234567890",
		PaymentMethod: MethodCashOnDelivery,
	}
}

func newFactory(repo *mockOrderRepo) *Factory {
	return NewFactory(repo, pricing.NewDefaultCalculator())
}

// --- Tests ---

func TestPlace_RecomputesTotal(t *testing.T) {
	repo := &mockOrderRepo{}
	f := newFactory(repo)
	c := testCart(uuid.New(), testLine("100.00", 2))

	o, err := f.Place(context.Background(), c, validShipping(), "")
	require.NoError(t, err)

	// subtotal 200 + tax 36 + shipping 150
	assert.True(t, decimal.RequireFromString("386.00").Equal(o.TotalAmount), "total %s", o.TotalAmount)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Lines, 1)
	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Lines[0].UnitPrice))
	assert.Equal(t, o.ID, o.Lines[0].OrderID)
}

func TestPlace_SnapshotsPrices(t *testing.T) {
	repo := &mockOrderRepo{}
	f := newFactory(repo)
	line := testLine("100.00", 1)
	c := testCart(uuid.New(), line)

	o, err := f.Place(context.Background(), c, validShipping(), "")
	require.NoError(t, err)

	// A later catalog price change must not touch the stored order.
	line.Product.Price = decimal.RequireFromString("999.00")

	assert.True(t, decimal.RequireFromString("100.00").Equal(o.Lines[0].UnitPrice))
	// subtotal 100 + tax 18 + shipping 150
	assert.True(t, decimal.RequireFromString("268.00").Equal(repo.placed.TotalAmount))
}

func TestPlace_EmptyCart(t *testing.T) {
	repo := &mockOrderRepo{}
	f := newFactory(repo)
	c := testCart(uuid.New())

	_, err := f.Place(context.Background(), c, validShipping(), "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, repo.placeCalls, "repository must not be touched")
}

func TestPlace_ValidationAbortsWithoutSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ShippingDetails)
	}{
		{"blank address", func(s *ShippingDetails) { s.Address = "  " }},
		{"blank phone", func(s *ShippingDetails) { s.Phone = "" }},
		{"unknown method", func(s *ShippingDetails) { s.PaymentMethod = "iou" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockOrderRepo{}
			f := newFactory(repo)
			c := testCart(uuid.New(), testLine("10.00", 1))

			ship := validShipping()
			tt.mutate(&ship)

			_, err := f.Place(context.Background(), c, ship, "")

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Zero(t, repo.placeCalls)
		})
	}
}

func TestPlace_RepositoryFailureLeavesNothing(t *testing.T) {
	repo := &mockOrderRepo{placeErr: errors.New("tx rolled back")}
	f := newFactory(repo)
	c := testCart(uuid.New(), testLine("10.00", 1))

	_, err := f.Place(context.Background(), c, validShipping(), "")

	require.Error(t, err)
	assert.Nil(t, repo.placed)
}

func TestPlace_StockConflict(t *testing.T) {
	repo := &mockOrderRepo{placeErr: ErrStockConflict}
	f := newFactory(repo)
	c := testCart(uuid.New(), testLine("10.00", 1))

	_, err := f.Place(context.Background(), c, validShipping(), "")
	require.ErrorIs(t, err, ErrStockConflict)
}

func TestPlace_DuplicatePaymentReference(t *testing.T) {
	repo := &mockOrderRepo{placeErr: ErrDuplicatePayment}
	f := newFactory(repo)
	c := testCart(uuid.New(), testLine("10.00", 1))

	ship := validShipping()
	ship.PaymentMethod = MethodCreditCard

	_, err := f.Place(context.Background(), c, ship, "pi_123")
	require.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestPlace_CarriesPaymentReference(t *testing.T) {
	repo := &mockOrderRepo{}
	f := newFactory(repo)
	c := testCart(uuid.New(), testLine("10.00", 1))

	ship := validShipping()
	ship.PaymentMethod = MethodCreditCard

	o, err := f.Place(context.Background(), c, ship, "pi_123")
	require.NoError(t, err)
	assert.Equal(t, "pi_123", o.PaymentIntentRef)
}

func TestUpdateStatus_CompletedIsImmutable(t *testing.T) {
	id := uuid.New()
	repo := &mockOrderRepo{byID: map[uuid.UUID]*Order{
		id: {ID: id, Status: StatusCompleted},
	}}
	f := newFactory(repo)

	err := f.UpdateStatus(context.Background(), id, StatusShipped)

	require.ErrorIs(t, err, ErrOrderCompleted)
	assert.Empty(t, repo.statusSet, "status must be left unchanged")
}

func TestUpdateStatus_OK(t *testing.T) {
	id := uuid.New()
	repo := &mockOrderRepo{byID: map[uuid.UUID]*Order{
		id: {ID: id, Status: StatusPending},
	}}
	f := newFactory(repo)

	require.NoError(t, f.UpdateStatus(context.Background(), id, StatusShipped))
	assert.Equal(t, StatusShipped, repo.statusSet)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	f := newFactory(&mockOrderRepo{})

	err := f.UpdateStatus(context.Background(), uuid.New(), Status("teleported"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFactory(&mockOrderRepo{byID: map[uuid.UUID]*Order{}})

	err := f.UpdateStatus(context.Background(), uuid.New(), StatusShipped)
	require.ErrorIs(t, err, ErrNotFound)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/checkout"
	"github.com/bazaarlane/storefront/internal/domain/order"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
	"github.com/bazaarlane/storefront/internal/domain/product"
	"github.com/bazaarlane/storefront/internal/domain/report"
	"github.com/bazaarlane/storefront/internal/domain/user"
	"github.com/bazaarlane/storefront/internal/payment"
)

// --- In-memory repositories ---

type memProducts struct {
	byID map[uuid.UUID]*product.Product
}

func (m *memProducts) ListActive(_ context.Context, _ product.Filter) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) GetActive(_ context.Context, id uuid.UUID) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok || !p.Active {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) Get(_ context.Context, id uuid.UUID) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) List(context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) Related(context.Context, uuid.UUID, int) ([]product.Product, error) {
	return nil, nil
}

func (m *memProducts) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *product.Product) error {
	if _, ok := m.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memCategories struct {
	byID map[uuid.UUID]*product.Category
}

func (m *memCategories) List(context.Context) ([]product.Category, error) {
	var out []product.Category
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memCategories) Get(_ context.Context, id uuid.UUID) (*product.Category, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, product.ErrCategoryNotFound
	}
	return c, nil
}

func (m *memCategories) Create(_ context.Context, c *product.Category) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memCategories) Update(_ context.Context, c *product.Category) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

type memCarts struct {
	products *memProducts
	byID     map[uuid.UUID]*cart.Cart
	byUser   map[uuid.UUID]uuid.UUID
}

func (m *memCarts) load(id uuid.UUID) *cart.Cart {
	c := m.byID[id]
	for i := range c.Lines {
		if p, ok := m.products.byID[c.Lines[i].ProductID]; ok {
			c.Lines[i].Product = *p
		}
	}
	return c
}

func (m *memCarts) FindOrCreateByUser(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if id, ok := m.byUser[userID]; ok {
		return m.load(id), nil
	}
	uid := userID
	c := &cart.Cart{ID: uuid.New(), UserID: &uid}
	m.byID[c.ID] = c
	m.byUser[userID] = c.ID
	return c, nil
}

func (m *memCarts) Get(_ context.Context, id uuid.UUID) (*cart.Cart, error) {
	if _, ok := m.byID[id]; !ok {
		return nil, cart.ErrNotFound
	}
	return m.load(id), nil
}

func (m *memCarts) CreateGuest(context.Context) (*cart.Cart, error) {
	c := &cart.Cart{ID: uuid.New()}
	m.byID[c.ID] = c
	return c, nil
}

func (m *memCarts) GetLine(_ context.Context, lineID uuid.UUID) (*cart.Line, error) {
	for _, c := range m.byID {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				line := c.Lines[i]
				if p, ok := m.products.byID[line.ProductID]; ok {
					line.Product = *p
				}
				return &line, nil
			}
		}
	}
	return nil, cart.ErrLineNotFound
}

func (m *memCarts) UpsertLine(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	c := m.byID[cartID]
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, cart.Line{ID: uuid.New(), ProductID: productID, Quantity: quantity})
	return nil
}

func (m *memCarts) UpdateLineQuantity(_ context.Context, lineID uuid.UUID, quantity int) error {
	for _, c := range m.byID {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines[i].Quantity = quantity
				return nil
			}
		}
	}
	return cart.ErrLineNotFound
}

func (m *memCarts) DeleteLine(_ context.Context, lineID uuid.UUID) error {
	for _, c := range m.byID {
		for i := range c.Lines {
			if c.Lines[i].ID == lineID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return nil
			}
		}
	}
	return cart.ErrLineNotFound
}

func (m *memCarts) Clear(_ context.Context, cartID uuid.UUID) error {
	if c, ok := m.byID[cartID]; ok {
		c.Lines = nil
	}
	return nil
}

type memOrders struct {
	byID map[uuid.UUID]*order.Order
}

func (m *memOrders) Place(_ context.Context, o *order.Order, _ uuid.UUID) error {
	m.byID[o.ID] = o
	return nil
}

func (m *memOrders) Get(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID uuid.UUID) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) List(context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id uuid.UUID, status order.Status) error {
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

type memUsers struct {
	byID map[uuid.UUID]*user.User
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *memUsers) GetByResetToken(context.Context, string) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.byID, id)
	return nil
}

func (m *memUsers) ListCustomers(context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range m.byID {
		if u.Role == user.RoleCustomer {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memSessions struct {
	byUser map[uuid.UUID]*checkout.Session
}

func (m *memSessions) Load(_ context.Context, userID uuid.UUID) (*checkout.Session, error) {
	s, ok := m.byUser[userID]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Save(_ context.Context, userID uuid.UUID, s *checkout.Session) error {
	cp := *s
	m.byUser[userID] = &cp
	return nil
}

func (m *memSessions) Clear(_ context.Context, userID uuid.UUID) error {
	delete(m.byUser, userID)
	return nil
}

type stubGateway struct {
	intent *payment.Intent
	err    error
}

func (g *stubGateway) CreateIntent(context.Context, int64, string, map[string]string) (*payment.Intent, error) {
	return g.intent, g.err
}

func (g *stubGateway) RetrieveIntent(context.Context, string) (*payment.Intent, error) {
	return g.intent, g.err
}

type emptyReports struct{}

func (emptyReports) Totals(context.Context) (report.Totals, error) {
	return report.Totals{Revenue: decimal.Zero}, nil
}
func (emptyReports) OrdersPerDay(context.Context, time.Time) ([]report.CountPoint, error) {
	return nil, nil
}
func (emptyReports) RevenuePerDay(context.Context, time.Time) ([]report.AmountPoint, error) {
	return nil, nil
}
func (emptyReports) OrdersPerMonth(context.Context, time.Time) ([]report.CountPoint, error) {
	return nil, nil
}
func (emptyReports) RevenuePerMonth(context.Context, time.Time) ([]report.AmountPoint, error) {
	return nil, nil
}

// --- Fixture ---

type fixture struct {
	app      *fiber.App
	handler  *Handler
	products *memProducts
	carts    *memCarts
	orders   *memOrders
	users    *memUsers
	sessions *memSessions
	gateway  *stubGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &memProducts{byID: map[uuid.UUID]*product.Product{}}
	categories := &memCategories{byID: map[uuid.UUID]*product.Category{}}
	carts := &memCarts{
		products: products,
		byID:     map[uuid.UUID]*cart.Cart{},
		byUser:   map[uuid.UUID]uuid.UUID{},
	}
	orders := &memOrders{byID: map[uuid.UUID]*order.Order{}}
	users := &memUsers{byID: map[uuid.UUID]*user.User{}}
	sessions := &memSessions{byUser: map[uuid.UUID]*checkout.Session{}}
	gateway := &stubGateway{}

	calc := pricing.NewDefaultCalculator()
	cartSvc := cart.NewService(carts, products)
	factory := order.NewFactory(orders, calc)
	wf := checkout.NewWorkflow(cartSvc, sessions, gateway, factory, calc, "pkr")
	userSvc := user.NewService(users, user.LogMailer{})
	reportSvc := report.NewService(emptyReports{})

	h := NewHandler(
		Config{JWTSecret: []byte("test-secret")},
		products, categories, cartSvc, wf, orders, factory, userSvc, reportSvc,
	)

	app := fiber.New()
	h.Routes(app)

	return &fixture{
		app:      app,
		handler:  h,
		products: products,
		carts:    carts,
		orders:   orders,
		users:    users,
		sessions: sessions,
		gateway:  gateway,
	}
}

func (f *fixture) addProduct(t *testing.T, name, price string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   "a fine product for testing",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	}
	f.products.byID[p.ID] = p
	return p
}

func (f *fixture) addUser(t *testing.T, email string, role user.Role) (*user.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &user.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	f.users.byID[u.ID] = u

	token, err := f.handler.issueToken(u)
	require.NoError(t, err)
	return u, token
}

func (f *fixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "Leather Wallet", "49.99", 10)
	f.addProduct(t, "Canvas Bag", "19.99", 5)

	resp := f.request(t, http.MethodGet, "/api/products", "", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["products"], 2)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/products/"+uuid.NewString(), "", nil)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "/products", body["redirect"])
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "Jane Doe",
		"email":    "jane@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])

	resp = f.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "jane@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name":     "J",
		"email":    "nope",
		"password": "123",
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestGuestCart_CookieBound(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Leather Wallet", "49.99", 10)

	resp := f.request(t, http.MethodPost, "/api/cart/lines", "", fiber.Map{
		"product_id": p.ID,
		"quantity":   2,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cartCookieSet bool
	for _, c := range resp.Cookies() {
		if c.Name == cartCookie && c.Value != "" {
			cartCookieSet = true
		}
	}
	assert.True(t, cartCookieSet, "guest cart cookie must be set")
}

func TestAddCartLine_BeyondStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Leather Wallet", "49.99", 3)
	_, token := f.addUser(t, "jane@example.com", user.RoleCustomer)

	resp := f.request(t, http.MethodPost, "/api/cart/lines", token, fiber.Map{
		"product_id": p.ID,
		"quantity":   5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCheckout_RequiresAuth(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodGet, "/api/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	f := newFixture(t)
	_, token := f.addUser(t, "jane@example.com", user.RoleCustomer)

	resp := f.request(t, http.MethodGet, "/api/checkout", token, nil)

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "/cart", body["redirect"])
}

func TestCheckout_CashOnDelivery(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Leather Wallet", "100.00", 10)
	_, token := f.addUser(t, "jane@example.com", user.RoleCustomer)

	resp := f.request(t, http.MethodPost, "/api/cart/lines", token, fiber.Map{
		"product_id": p.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/checkout/address", token, fiber.Map{
		"address": "123 Test St",
		"phone":   "1234567890",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/checkout/payment", token, fiber.Map{
		"method": "cash_on_delivery",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.request(t, http.MethodPost, "/api/checkout/confirm", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	o, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pending", o["status"])
	// subtotal 200 + tax 36 + shipping 150
	assert.Equal(t, "386", o["total_amount"])
}

func TestCheckout_CardWithoutPayment(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Leather Wallet", "100.00", 10)
	_, token := f.addUser(t, "jane@example.com", user.RoleCustomer)

	f.request(t, http.MethodPost, "/api/cart/lines", token, fiber.Map{
		"product_id": p.ID, "quantity": 1,
	})
	f.request(t, http.MethodPost, "/api/checkout/address", token, fiber.Map{
		"address": "123 Test St", "phone": "1234567890",
	})
	f.request(t, http.MethodPost, "/api/checkout/payment", token, fiber.Map{
		"method": "credit_card",
	})

	resp := f.request(t, http.MethodPost, "/api/checkout/confirm", token, nil)

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "/checkout/payment", body["redirect"])
	assert.Empty(t, f.orders.byID, "no order may exist")
}

func TestCheckout_GatewayUnavailable(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Leather Wallet", "100.00", 10)
	_, token := f.addUser(t, "jane@example.com", user.RoleCustomer)
	f.gateway.err = payment.ErrGatewayUnavailable

	f.request(t, http.MethodPost, "/api/cart/lines", token, fiber.Map{
		"product_id": p.ID, "quantity": 1,
	})
	f.request(t, http.MethodPost, "/api/checkout/address", token, fiber.Map{
		"address": "123 Test St", "phone": "1234567890",
	})
	f.request(t, http.MethodPost, "/api/checkout/payment", token, fiber.Map{
		"method": "credit_card",
	})

	resp := f.request(t, http.MethodPost, "/api/checkout/payment-intent", token, nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdmin_RequiresRole(t *testing.T) {
	f := newFixture(t)
	_, customerToken := f.addUser(t, "jane@example.com", user.RoleCustomer)
	_, adminToken := f.addUser(t, "root@example.com", user.RoleAdmin)

	resp := f.request(t, http.MethodGet, "/api/admin/dashboard", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.request(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdmin_DeleteAdminRejected(t *testing.T) {
	f := newFixture(t)
	admin, adminToken := f.addUser(t, "root@example.com", user.RoleAdmin)

	resp := f.request(t, http.MethodDelete, "/api/admin/users/"+admin.ID.String(), adminToken, nil)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, f.users.byID, admin.ID, "admin account survives")
}

func TestAdmin_DeleteCustomerWithOrders(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.addUser(t, "root@example.com", user.RoleAdmin)
	customer, _ := f.addUser(t, "jane@example.com", user.RoleCustomer)

	o := &order.Order{ID: uuid.New(), UserID: customer.ID, Status: order.StatusCompleted, TotalAmount: decimal.Zero}
	f.orders.byID[o.ID] = o

	resp := f.request(t, http.MethodDelete, "/api/admin/users/"+customer.ID.String(), adminToken, nil)

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, f.users.byID, customer.ID)

	// The order outlives the account as a historical record.
	resp = f.request(t, http.MethodGet, "/api/admin/orders/"+o.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdmin_CompletedOrderImmutable(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.addUser(t, "root@example.com", user.RoleAdmin)

	o := &order.Order{ID: uuid.New(), Status: order.StatusCompleted, TotalAmount: decimal.Zero}
	f.orders.byID[o.ID] = o

	resp := f.request(t, http.MethodPatch, "/api/admin/orders/"+o.ID.String()+"/status", adminToken,
		fiber.Map{"status": "shipped"})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, order.StatusCompleted, f.orders.byID[o.ID].Status)
}

func TestAdmin_CreateProductValidation(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.addUser(t, "root@example.com", user.RoleAdmin)

	resp := f.request(t, http.MethodPost, "/api/admin/products", adminToken, fiber.Map{
		"name":        "ab",
		"description": "short",
		"price":       "0",
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "categories")
}

func TestMyOrders_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	owner, _ := f.addUser(t, "owner@example.com", user.RoleCustomer)
	_, otherToken := f.addUser(t, "other@example.com", user.RoleCustomer)

	o := &order.Order{ID: uuid.New(), UserID: owner.ID, Status: order.StatusPending, TotalAmount: decimal.Zero}
	f.orders.byID[o.ID] = o

	resp := f.request(t, http.MethodGet, "/api/orders/"+o.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "someone else's order looks nonexistent")
}

// Package handler exposes the storefront over HTTP with fiber. Routes are
// split into a public group, an authenticated shopper group, and an admin
// group.
package handler

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"go.uber.org/zap"

	"github.com/bazaarlane/storefront/internal/domain/cart"
	"github.com/bazaarlane/storefront/internal/domain/checkout"
	"github.com/bazaarlane/storefront/internal/domain/order"
	"github.com/bazaarlane/storefront/internal/domain/product"
	"github.com/bazaarlane/storefront/internal/domain/report"
	"github.com/bazaarlane/storefront/internal/domain/user"
	"github.com/bazaarlane/storefront/internal/payment"
)

// relatedProductsLimit caps the "you may also like" strip on product pages.
const relatedProductsLimit = 4

// Config holds handler-level settings.
type Config struct {
	JWTSecret []byte
}

// Handler carries the domain services behind the HTTP surface.
type Handler struct {
	cfg Config

	products   product.Repository
	categories product.CategoryRepository
	carts      *cart.Service
	checkout   *checkout.Workflow
	orders     order.Repository
	factory    *order.Factory
	users      *user.Service
	reports    *report.Service
}

// NewHandler creates a Handler over the given services.
func NewHandler(
	cfg Config,
	products product.Repository,
	categories product.CategoryRepository,
	carts *cart.Service,
	wf *checkout.Workflow,
	orders order.Repository,
	factory *order.Factory,
	users *user.Service,
	reports *report.Service,
) *Handler {
	return &Handler{
		cfg:        cfg,
		products:   products,
		categories: categories,
		carts:      carts,
		checkout:   wf,
		orders:     orders,
		factory:    factory,
		users:      users,
		reports:    reports,
	}
}

// Routes registers every route group on the app. The public group needs no
// token, the shopper group requires a valid JWT, and the admin group
// additionally requires the admin role claim.
func (h *Handler) Routes(app *fiber.App) {
	api := app.Group("/api")

	// Public.
	api.Post("/auth/register", h.register)
	api.Post("/auth/login", h.login)
	api.Post("/auth/password-reset", h.startPasswordReset)
	api.Put("/auth/password-reset", h.completePasswordReset)
	api.Get("/products", h.listProducts)
	api.Get("/products/:id", h.getProduct)
	api.Get("/categories", h.listCategories)

	// Cart works for guests (cookie-bound) and accounts alike.
	api.Get("/cart", h.optionalAuth(), h.getCart)
	api.Post("/cart/lines", h.optionalAuth(), h.addCartLine)
	api.Patch("/cart/lines/:id", h.optionalAuth(), h.changeCartLine)
	api.Delete("/cart/lines/:id", h.optionalAuth(), h.removeCartLine)

	// Authenticated shoppers.
	authed := api.Group("", h.requireAuth())
	authed.Get("/profile", h.getProfile)
	authed.Put("/profile", h.updateProfile)
	authed.Get("/orders", h.listMyOrders)
	authed.Get("/orders/:id", h.getMyOrder)
	authed.Get("/checkout", h.enterCheckout)
	authed.Post("/checkout/address", h.submitAddress)
	authed.Post("/checkout/payment", h.submitPayment)
	authed.Post("/checkout/payment-intent", h.createPaymentIntent)
	authed.Post("/checkout/complete-payment", h.completePayment)
	authed.Post("/checkout/confirm", h.confirmCheckout)

	// Back office.
	admin := api.Group("/admin", h.requireAuth(), h.requireAdmin)
	admin.Get("/dashboard", h.dashboard)
	admin.Get("/products", h.adminListProducts)
	admin.Post("/products", h.createProduct)
	admin.Get("/products/:id", h.adminGetProduct)
	admin.Put("/products/:id", h.updateProduct)
	admin.Delete("/products/:id", h.deleteProduct)
	admin.Post("/categories", h.createCategory)
	admin.Put("/categories/:id", h.updateCategory)
	admin.Delete("/categories/:id", h.deleteCategory)
	admin.Get("/orders", h.adminListOrders)
	admin.Get("/orders/:id", h.adminGetOrder)
	admin.Patch("/orders/:id/status", h.updateOrderStatus)
	admin.Get("/users", h.listCustomers)
	admin.Delete("/users/:id", h.deleteUser)
}

// requireAuth validates the bearer token and stores it in Locals("user").
func (h *Handler) requireAuth() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: h.cfg.JWTSecret,
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "authentication required",
			})
		},
	})
}

// optionalAuth validates a bearer token when one is present but lets
// anonymous requests through, so guests can use the cart.
func (h *Handler) optionalAuth() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: h.cfg.JWTSecret,
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "invalid token",
			})
		},
	})
}

// requireAdmin rejects tokens without the admin role claim.
func (h *Handler) requireAdmin(c *fiber.Ctx) error {
	if claimRole(c) != string(user.RoleAdmin) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "admin access required",
		})
	}
	return c.Next()
}

// respondError maps domain errors onto the HTTP surface. Anything unmatched
// becomes an opaque 500; the detail goes to the log only.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var (
		productVal  *product.ValidationError
		orderVal    *order.ValidationError
		userVal     *user.ValidationError
		checkoutVal *checkout.ValidationError
		rejected    *payment.RejectedError
	)

	switch {
	case errors.As(err, &productVal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": productVal.Fields})
	case errors.As(err, &userVal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": userVal.Fields})
	case errors.As(err, &orderVal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": orderVal.Messages})
	case errors.As(err, &checkoutVal):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": checkoutVal.Message})

	case errors.Is(err, checkout.ErrCartEmpty):
		return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
			"message":  "your cart is empty",
			"redirect": "/cart",
		})
	case errors.Is(err, checkout.ErrPaymentRequired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":  "payment has not been completed",
			"redirect": "/checkout/payment",
		})
	case errors.Is(err, checkout.ErrPaymentNotConfirmed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":  "payment was not successful, please try again",
			"redirect": "/checkout/payment",
		})

	case errors.Is(err, payment.ErrGatewayUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "payment service is temporarily unavailable, please try again later",
		})
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": rejected.Message})

	case errors.Is(err, order.ErrStockConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "some items just sold out, please review your cart",
		})
	case errors.Is(err, order.ErrDuplicatePayment):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "an order for this payment already exists",
		})
	case errors.Is(err, order.ErrOrderCompleted):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "completed orders cannot be changed",
		})
	case errors.Is(err, order.ErrInvalidStatus):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "unknown order status",
		})

	case errors.Is(err, cart.ErrOutOfStock):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "product is out of stock",
		})
	case errors.Is(err, cart.ErrInsufficientStock):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "requested quantity exceeds available stock",
		})

	case errors.Is(err, user.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid email or password",
		})
	case errors.Is(err, user.ErrEmailTaken):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": fiber.Map{"email": "has already been taken"},
		})
	case errors.Is(err, user.ErrAdminImmutable):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "admin accounts cannot be deleted",
		})
	case errors.Is(err, user.ErrResetInvalid), errors.Is(err, user.ErrResetExpired):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "password reset link is invalid or has expired",
		})

	case errors.Is(err, product.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message":  "product not found",
			"redirect": "/products",
		})
	case errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	case errors.Is(err, product.ErrDuplicateCategory):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"errors": fiber.Map{"name": "has already been taken"},
		})
	}

	zctx.From(c.UserContext()).Error("Unhandled error",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "something went wrong",
	})
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/cart"
)

// cartCookie binds guest carts to the browser.
const (
	cartCookie    = "cart_id"
	cartCookieTTL = 30 * 24 * time.Hour
)

type cartLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartResponse struct {
	ID    uuid.UUID          `json:"id"`
	Lines []cartLineResponse `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

func presentCart(c *cart.Cart) cartResponse {
	lines := make([]cartLineResponse, len(c.Lines))
	for i, line := range c.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		lines[i] = cartLineResponse{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
			LineTotal: line.Product.Price.Mul(qty),
		}
	}
	return cartResponse{ID: c.ID, Lines: lines, Total: cart.Total(c)}
}

// currentCart resolves the shopper's cart: the account cart when a token is
// attached, otherwise the cookie-bound guest cart (created lazily, cookie
// refreshed).
func (h *Handler) currentCart(c *fiber.Ctx) (*cart.Cart, error) {
	if authenticated(c) {
		userID, err := currentUserID(c)
		if err != nil {
			return nil, err
		}
		return h.carts.ForUser(c.UserContext(), userID)
	}

	cartID := uuid.Nil
	if raw := c.Cookies(cartCookie); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			cartID = id
		}
	}

	guest, err := h.carts.ForGuest(c.UserContext(), cartID)
	if err != nil {
		return nil, err
	}

	c.Cookie(&fiber.Cookie{
		Name:     cartCookie,
		Value:    guest.ID.String(),
		Expires:  time.Now().Add(cartCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return guest, nil
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	current, err := h.currentCart(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentCart(current))
}

func (h *Handler) addCartLine(c *fiber.Ctx) error {
	var req struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int       `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	current, err := h.currentCart(c)
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.carts.AddLine(c.UserContext(), current.ID, req.ProductID, req.Quantity); err != nil {
		return h.respondError(c, err)
	}

	updated, err := h.currentCart(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(presentCart(updated))
}

func (h *Handler) changeCartLine(c *fiber.Ctx) error {
	lineID, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Op string `json:"op"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	var delta cart.QuantityDelta
	switch req.Op {
	case "increment":
		delta = cart.Increment
	case "decrement":
		delta = cart.Decrement
	default:
		return fiber.NewError(fiber.StatusBadRequest, "op must be increment or decrement")
	}

	if err := h.carts.ChangeQuantity(c.UserContext(), lineID, delta); err != nil {
		return h.respondError(c, err)
	}

	current, err := h.currentCart(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentCart(current))
}

func (h *Handler) removeCartLine(c *fiber.Ctx) error {
	lineID, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.carts.RemoveLine(c.UserContext(), lineID); err != nil {
		return h.respondError(c, err)
	}

	current, err := h.currentCart(c)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentCart(current))
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/checkout"
	"github.com/bazaarlane/storefront/internal/domain/pricing"
)

type quoteResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type checkoutResponse struct {
	Step            checkout.Step `json:"step"`
	ShippingAddress string        `json:"shipping_address,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	PaymentMethod   string        `json:"payment_method,omitempty"`
	Cart            cartResponse  `json:"cart"`
	Quote           quoteResponse `json:"quote"`
}

func presentCheckout(state *checkout.State) checkoutResponse {
	return checkoutResponse{
		Step:            state.Session.Step,
		ShippingAddress: state.Session.ShippingAddress,
		Phone:           state.Session.Phone,
		PaymentMethod:   state.Session.PaymentMethod,
		Cart:            presentCart(state.Cart),
		Quote:           presentQuote(state.Quote),
	}
}

func presentQuote(q pricing.Quote) quoteResponse {
	return quoteResponse{Subtotal: q.Subtotal, Tax: q.Tax, Shipping: q.Shipping, Total: q.Total}
}

func (h *Handler) enterCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	state, err := h.checkout.Enter(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentCheckout(state))
}

func (h *Handler) submitAddress(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.checkout.SubmitAddress(c.UserContext(), userID, req.Address, req.Phone); err != nil {
		return h.respondError(c, err)
	}
	return h.enterCheckout(c)
}

func (h *Handler) submitPayment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Method string `json:"method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.checkout.SubmitPayment(c.UserContext(), userID, req.Method); err != nil {
		return h.respondError(c, err)
	}
	return h.enterCheckout(c)
}

func (h *Handler) createPaymentIntent(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	intent, err := h.checkout.CreatePaymentIntent(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"client_secret": intent.ClientSecret})
}

func (h *Handler) completePayment(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		PaymentIntent string `json:"payment_intent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	o, err := h.checkout.CompletePayment(c.UserContext(), userID, req.PaymentIntent)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": presentOrder(o)})
}

func (h *Handler) confirmCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	o, err := h.checkout.Confirm(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order": presentOrder(o)})
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/order"
)

type orderLineResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Status          order.Status        `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	Phone           string              `json:"phone"`
	PaymentMethod   string              `json:"payment_method"`
	Lines           []orderLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

func presentOrder(o *order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}
	return orderResponse{
		ID:              o.ID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		PaymentMethod:   o.PaymentMethod,
		Lines:           lines,
		CreatedAt:       o.CreatedAt,
	}
}

func presentOrders(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = presentOrder(&orders[i])
	}
	return out
}

func (h *Handler) listMyOrders(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListByUser(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": presentOrders(orders)})
}

// getMyOrder returns one of the shopper's own orders. Someone else's order
// id yields the same 404 as a nonexistent one.
func (h *Handler) getMyOrder(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	o, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	if o.UserID != userID {
		return h.respondError(c, order.ErrNotFound)
	}
	return c.JSON(fiber.Map{"order": presentOrder(o)})
}

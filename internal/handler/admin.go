package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/order"
	"github.com/bazaarlane/storefront/internal/domain/product"
)

type productRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Active        *bool           `json:"active"`
	ImagePath     string          `json:"image_path"`
	CategoryIDs   []uuid.UUID     `json:"category_ids"`
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	d, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"totals": fiber.Map{
			"orders":    d.Totals.Orders,
			"revenue":   d.Totals.Revenue,
			"customers": d.Totals.Customers,
			"products":  d.Totals.Products,
		},
		"sales_by_day":     d.SalesByDay,
		"revenue_by_day":   d.RevenueByDay,
		"sales_by_month":   d.SalesByMonth,
		"revenue_by_month": d.RevenueByMonth,
	})
}

func (h *Handler) adminListProducts(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"products": presentProducts(products)})
}

func (h *Handler) adminGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"product": presentProduct(p)})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	p, err := h.productFromRequest(c, &req, uuid.New())
	if err != nil {
		return h.respondError(c, err)
	}
	if err := p.Validate(); err != nil {
		return h.respondError(c, err)
	}

	if err := h.products.Create(c.UserContext(), p); err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": presentProduct(p)})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	p, err := h.productFromRequest(c, &req, id)
	if err != nil {
		return h.respondError(c, err)
	}
	if err := p.Validate(); err != nil {
		return h.respondError(c, err)
	}

	if err := h.products.Update(c.UserContext(), p); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"product": presentProduct(p)})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// productFromRequest resolves the submitted category ids so a stale one
// fails loudly instead of silently dropping the link.
func (h *Handler) productFromRequest(c *fiber.Ctx, req *productRequest, id uuid.UUID) (*product.Product, error) {
	cats := make([]product.Category, 0, len(req.CategoryIDs))
	for _, catID := range req.CategoryIDs {
		cat, err := h.categories.Get(c.UserContext(), catID)
		if err != nil {
			return nil, err
		}
		cats = append(cats, *cat)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return &product.Product{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Active:        active,
		ImagePath:     req.ImagePath,
		Categories:    cats,
	}, nil
}

func (h *Handler) createCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	cat := &product.Category{ID: uuid.New(), Name: req.Name}
	if err := h.categories.Create(c.UserContext(), cat); err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"category": cat})
}

func (h *Handler) updateCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	cat := &product.Category{ID: id, Name: req.Name}
	if err := h.categories.Update(c.UserContext(), cat); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"category": cat})
}

func (h *Handler) deleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) adminListOrders(c *fiber.Ctx) error {
	orders, err := h.orders.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": presentOrders(orders)})
}

func (h *Handler) adminGetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	o, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"order": presentOrder(o)})
}

func (h *Handler) updateOrderStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.factory.UpdateStatus(c.UserContext(), id, order.Status(req.Status)); err != nil {
		return h.respondError(c, err)
	}

	o, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"order": presentOrder(o)})
}

func (h *Handler) listCustomers(c *fiber.Ctx) error {
	customers, err := h.users.ListCustomers(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]userResponse, len(customers))
	for i := range customers {
		out[i] = presentUser(&customers[i])
	}
	return c.JSON(fiber.Map{"users": out})
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

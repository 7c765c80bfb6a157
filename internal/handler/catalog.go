package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/product"
)

type productResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         decimal.Decimal    `json:"price"`
	StockQuantity int                `json:"stock_quantity"`
	Active        bool               `json:"active"`
	ImagePath     string             `json:"image_path,omitempty"`
	Categories    []categoryResponse `json:"categories"`
	CreatedAt     time.Time          `json:"created_at"`
}

type categoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func presentProduct(p *product.Product) productResponse {
	cats := make([]categoryResponse, len(p.Categories))
	for i, c := range p.Categories {
		cats[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		Active:        p.Active,
		ImagePath:     p.ImagePath,
		Categories:    cats,
		CreatedAt:     p.CreatedAt,
	}
}

func presentProducts(products []product.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = presentProduct(&products[i])
	}
	return out
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	filter := product.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	products, err := h.products.ListActive(c.UserContext(), filter)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"products": presentProducts(products)})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.products.GetActive(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}

	related, err := h.products.Related(c.UserContext(), id, relatedProductsLimit)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"product": presentProduct(p),
		"related": presentProducts(related),
	})
}

func (h *Handler) listCategories(c *fiber.Ctx) error {
	cats, err := h.categories.List(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]categoryResponse, len(cats))
	for i, cat := range cats {
		out[i] = categoryResponse{ID: cat.ID, Name: cat.Name}
	}
	return c.JSON(fiber.Map{"categories": out})
}

// parseID reads the :id path parameter as a UUID.
func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

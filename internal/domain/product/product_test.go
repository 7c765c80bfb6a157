package product

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		ID:            uuid.New(),
		Name:          "Mechanical Keyboard",
		Description:   "A sturdy mechanical keyboard with brown switches.",
		Price:         decimal.RequireFromString("120.00"),
		StockQuantity: 5,
		Active:        true,
		Categories:    []Category{{ID: uuid.New(), Name: "Gaming"}},
	}
}

func TestValidate_OK(t *testing.T) {
	p := validProduct()
	require.NoError(t, p.Validate())
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Product)
		field  string
	}{
		{"blank name", func(p *Product) { p.Name = "  " }, "name"},
		{"short name", func(p *Product) { p.Name = "ab" }, "name"},
		{"long name", func(p *Product) { p.Name = string(make([]byte, 101)) }, "name"},
		{"short description", func(p *Product) { p.Description = "too short" }, "description"},
		{"zero price", func(p *Product) { p.Price = decimal.Zero }, "price"},
		{"negative price", func(p *Product) { p.Price = decimal.NewFromInt(-1) }, "price"},
		{"negative stock", func(p *Product) { p.StockQuantity = -1 }, "stock_quantity"},
		{"no categories", func(p *Product) { p.Categories = nil }, "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)

			err := p.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	p := Product{}

	err := p.Validate()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 5)
}

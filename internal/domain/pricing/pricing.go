// Package pricing computes checkout totals. It is pure and deterministic:
// the same line items always produce the same quote.
package pricing

import "github.com/shopspring/decimal"

// Default rates matching the storefront's fixed pricing policy.
var (
	DefaultTaxRate     = decimal.RequireFromString("0.18")
	DefaultShippingFee = decimal.NewFromInt(150)
)

// Item is one priced line entering a quote.
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the full price breakdown for a set of items.
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Calculator produces quotes using a fixed tax rate and flat shipping fee.
type Calculator struct {
	taxRate  decimal.Decimal
	shipping decimal.Decimal
}

// NewCalculator creates a Calculator with the given tax rate (fraction, e.g.
// 0.18) and flat shipping fee.
func NewCalculator(taxRate, shipping decimal.Decimal) Calculator {
	return Calculator{taxRate: taxRate, shipping: shipping}
}

// NewDefaultCalculator creates a Calculator with the storefront defaults.
func NewDefaultCalculator() Calculator {
	return NewCalculator(DefaultTaxRate, DefaultShippingFee)
}

// Quote computes subtotal, tax, shipping, and grand total for the items.
// Amounts are rounded to standard currency precision (2 decimal places).
func (c Calculator) Quote(items []Item) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(c.taxRate).Round(2)
	total := subtotal.Add(tax).Add(c.shipping).Round(2)

	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: c.shipping,
		Total:    total,
	}
}

// MinorUnits converts an amount to minor currency units (x100, truncated).
// The payment gateway is charged exactly this value, and the later intent
// verification compares against it.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

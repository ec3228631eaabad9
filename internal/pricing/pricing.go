package pricing

import (
	"github.com/shopspring/decimal"
)

// Line is the minimal view of a cart line the calculator needs.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Config carries the shipping rules. Both values are whole rupees.
type Config struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// Summary is the fully priced view of a cart.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeSummary prices a set of lines under an optional coupon.
//
// Percentage discounts are rounded to the nearest whole rupee, matching
// the storefront's display granularity. The discount never exceeds the
// subtotal and the total never goes below zero. Shipping is waived once
// the subtotal meets the free-shipping threshold; the fee applies to any
// smaller non-empty cart.
func ComputeSummary(lines []Line, coupon *Coupon, cfg Config) Summary {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.discountFor(subtotal)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	shipping := decimal.Zero
	if subtotal.Sign() > 0 && subtotal.LessThan(cfg.FreeShippingThreshold) {
		shipping = cfg.FlatShippingFee
	}

	total := subtotal.Sub(discount).Add(shipping)
	if total.Sign() < 0 {
		total = decimal.Zero
	}

	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    total,
	}
}

package service

import (
	"github.com/shopspring/decimal"

	"storefront/internal/entity"
)

var (
	taxRate               = decimal.RequireFromString("0.08")
	freeShippingThreshold = decimal.NewFromInt(50)
	flatShipping          = decimal.RequireFromString("9.99")
)

// LineTotal is price times quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Summarize computes tax and shipping for a subtotal. Every amount is rounded
// to cents and the total is the sum of the rounded parts.
func Summarize(subtotal decimal.Decimal) entity.OrderSummary {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	return entity.OrderSummary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

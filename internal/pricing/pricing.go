// Package pricing holds the money math for the storefront: effective
// unit prices, order quotes, and review rating averages. Everything is
// a pure function so derived values are recomputed explicitly by
// callers, never as a persistence side effect.
package pricing

import "github.com/shopspring/decimal"

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
	taxRate          = decimal.NewFromFloat(0.08)
	hundred          = decimal.NewFromInt(100)
)

// UnitPrice returns the effective price for one unit: the sale price
// when the product is on sale with a percentage set, the base price
// otherwise.
func UnitPrice(base decimal.Decimal, onSale bool, salePercentage int) decimal.Decimal {
	if !onSale || salePercentage <= 0 {
		return base
	}
	discount := decimal.NewFromInt(int64(salePercentage)).Div(hundred)
	return base.Mul(decimal.NewFromInt(1).Sub(discount))
}

type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Quote struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// QuoteItems aggregates line items into an order quote. Arithmetic runs
// at full precision; the assembled quote is rounded to cents, and the
// total is the exact sum of the rounded components. Shipping is free
// above the threshold, flat otherwise. An empty item set yields the
// degenerate flat-shipping quote; callers reject empty orders before
// ever getting here.
func QuoteItems(items []LineItem) Quote {
	var itemsPrice decimal.Decimal
	for _, it := range items {
		itemsPrice = itemsPrice.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	itemsPrice = itemsPrice.Round(2)

	shipping := flatShipping
	if itemsPrice.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := itemsPrice.Mul(taxRate).Round(2)

	return Quote{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}

// AverageRating is the mean of the given review ratings, 0 when there
// are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

package sale

import (
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/catalog"
)

var hundred = decimal.NewFromInt(100)

// Totals are the authoritative aggregates for a sale. Per-line values
// are carried at full precision; rounding happens exactly once here, at
// the aggregate level, so item order cannot change the outcome.
type Totals struct {
	Subtotal      decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDiscount decimal.Decimal
	GrandTotal    decimal.Decimal
}

// buildItem validates one proposed line against its resolved product and
// computes its discount, tax and line total at full precision.
//
// The effective discount is the larger of the fixed discount and the
// percentage discount over the gross amount; the tie-break favors the
// customer. When the caller does not attest a tax amount, it is derived
// from the product's tax rate over the discounted amount.
func buildItem(params ItemParams, product *catalog.Product, maxDiscountPercent decimal.Decimal) (Item, error) {
	if params.Quantity <= 0 {
		return Item{}, invalidf("quantity", "must be greater than zero, got %d", params.Quantity)
	}

	if params.UnitPrice.IsNegative() {
		return Item{}, invalidf("unit_price", "must not be negative")
	}

	if params.DiscountPercent.IsNegative() || params.DiscountFixed.IsNegative() {
		return Item{}, invalidf("discount", "must not be negative")
	}

	if params.DiscountPercent.GreaterThan(maxDiscountPercent) {
		return Item{}, invalidf("discount_percent", "exceeds the allowed maximum of %s%%", maxDiscountPercent)
	}

	item := Item{
		ProductID:       params.ProductID,
		ProductName:     product.Name,
		Quantity:        params.Quantity,
		UnitPrice:       params.UnitPrice,
		DiscountPercent: params.DiscountPercent,
		DiscountFixed:   params.DiscountFixed,
	}

	gross := item.Gross()

	percentDiscount := gross.Mul(params.DiscountPercent).Div(hundred)
	item.DiscountAmount = decimal.Max(params.DiscountFixed, percentDiscount)

	if item.DiscountAmount.GreaterThan(gross) {
		return Item{}, invalidf("discount", "exceeds the line amount %s", gross)
	}

	if params.TaxAmount != nil {
		item.TaxAmount = *params.TaxAmount
	} else {
		item.TaxAmount = gross.Sub(item.DiscountAmount).Mul(product.TaxRate).Div(hundred)
	}

	if item.TaxAmount.IsNegative() {
		return Item{}, invalidf("tax_amount", "must not be negative")
	}

	item.LineTotal = gross.Sub(item.DiscountAmount).Add(item.TaxAmount)

	return item, nil
}

// computeTotals accumulates full-precision line values and rounds the
// aggregates half-up to the currency precision. The grand total is
// composed from the rounded aggregates so that
// subtotal + tax - discount == grand total holds exactly.
func computeTotals(items []Item, precision int32) Totals {
	var subtotal, tax, discount decimal.Decimal

	for _, item := range items {
		subtotal = subtotal.Add(item.Gross())
		tax = tax.Add(item.TaxAmount)
		discount = discount.Add(item.DiscountAmount)
	}

	t := Totals{
		Subtotal:      subtotal.Round(precision),
		TotalTax:      tax.Round(precision),
		TotalDiscount: discount.Round(precision),
	}
	t.GrandTotal = t.Subtotal.Add(t.TotalTax).Sub(t.TotalDiscount)

	return t
}

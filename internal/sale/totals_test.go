package sale

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(taxRate string) *catalog.Product {
	return &catalog.Product{
		Name:    "Espresso Beans 1kg",
		TaxRate: dec(taxRate),
	}
}

func TestBuildItem(t *testing.T) {
	maxDiscount := dec("100")

	type testCase struct {
		name         string
		params       ItemParams
		product      *catalog.Product
		wantErr      string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}

	taxTen := dec("10")

	tests := []testCase{
		{
			name:    "ZeroQuantity",
			params:  ItemParams{Quantity: 0, UnitPrice: dec("5")},
			product: testProduct("0"),
			wantErr: "quantity",
		},
		{
			name:    "NegativeQuantity",
			params:  ItemParams{Quantity: -3, UnitPrice: dec("5")},
			product: testProduct("0"),
			wantErr: "quantity",
		},
		{
			name:    "NegativeUnitPrice",
			params:  ItemParams{Quantity: 1, UnitPrice: dec("-5")},
			product: testProduct("0"),
			wantErr: "unit_price",
		},
		{
			name: "PercentAboveMaximum",
			params: ItemParams{
				Quantity: 1, UnitPrice: dec("10"), DiscountPercent: dec("101"),
			},
			product: testProduct("0"),
			wantErr: "discount_percent",
		},
		{
			name: "FixedDiscountWins",
			params: ItemParams{
				Quantity: 2, UnitPrice: dec("50"),
				DiscountPercent: dec("10"), DiscountFixed: dec("15"),
			},
			product:      testProduct("0"),
			wantDiscount: "15", // 10% of 100 is only 10
			wantTax:      "0",
			wantTotal:    "85",
		},
		{
			name: "PercentDiscountWins",
			params: ItemParams{
				Quantity: 2, UnitPrice: dec("50"),
				DiscountPercent: dec("20"), DiscountFixed: dec("15"),
			},
			product:      testProduct("0"),
			wantDiscount: "20", // 20% of 100 beats the fixed 15
			wantTax:      "0",
			wantTotal:    "80",
		},
		{
			name: "TaxDerivedFromProductRate",
			params: ItemParams{
				Quantity: 1, UnitPrice: dec("100"), DiscountFixed: dec("20"),
			},
			product:      testProduct("10"),
			wantDiscount: "20",
			wantTax:      "8", // 10% of the discounted 80
			wantTotal:    "88",
		},
		{
			name: "AttestedTaxOverridesRate",
			params: ItemParams{
				Quantity: 1, UnitPrice: dec("100"), TaxAmount: &taxTen,
			},
			product:      testProduct("21"),
			wantDiscount: "0",
			wantTax:      "10",
			wantTotal:    "110",
		},
		{
			name: "DiscountExceedsLine",
			params: ItemParams{
				Quantity: 1, UnitPrice: dec("10"), DiscountFixed: dec("11"),
			},
			product: testProduct("0"),
			wantErr: "discount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := buildItem(tt.params, tt.product, maxDiscount)

			if tt.wantErr != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantErr, vErr.Field)

				return
			}

			require.NoError(t, err)
			assert.True(t, item.DiscountAmount.Equal(dec(tt.wantDiscount)),
				"discount = %s, want %s", item.DiscountAmount, tt.wantDiscount)
			assert.True(t, item.TaxAmount.Equal(dec(tt.wantTax)),
				"tax = %s, want %s", item.TaxAmount, tt.wantTax)
			assert.True(t, item.LineTotal.Equal(dec(tt.wantTotal)),
				"line total = %s, want %s", item.LineTotal, tt.wantTotal)
		})
	}
}

func buildTestItems(t *testing.T) []Item {
	t.Helper()

	lines := []ItemParams{
		{Quantity: 2, UnitPrice: dec("19.99"), DiscountPercent: dec("5")},
		{Quantity: 1, UnitPrice: dec("3.35")},
		{Quantity: 7, UnitPrice: dec("0.99"), DiscountFixed: dec("0.50")},
		{Quantity: 3, UnitPrice: dec("12.45"), DiscountPercent: dec("12.5")},
	}

	items := make([]Item, 0, len(lines))

	for _, lp := range lines {
		item, err := buildItem(lp, testProduct("21"), dec("100"))
		require.NoError(t, err)

		items = append(items, item)
	}

	return items
}

func TestComputeTotals_Invariant(t *testing.T) {
	items := buildTestItems(t)
	totals := computeTotals(items, 2)

	want := totals.Subtotal.Add(totals.TotalTax).Sub(totals.TotalDiscount)
	assert.True(t, totals.GrandTotal.Equal(want),
		"grand total %s != subtotal + tax - discount %s", totals.GrandTotal, want)

	// At full precision the line totals compose exactly from the raw
	// aggregates; rounding only ever happens once, at the end.
	var lineSum, gross, tax, discount decimal.Decimal
	for _, item := range items {
		lineSum = lineSum.Add(item.LineTotal)
		gross = gross.Add(item.Gross())
		tax = tax.Add(item.TaxAmount)
		discount = discount.Add(item.DiscountAmount)
	}

	assert.True(t, lineSum.Equal(gross.Add(tax).Sub(discount)),
		"sum of line totals %s != gross + tax - discount", lineSum)
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	items := buildTestItems(t)
	want := computeTotals(items, 2)

	rng := rand.New(rand.NewSource(1))

	for n := 0; n < 20; n++ {
		rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})

		got := computeTotals(items, 2)

		assert.True(t, got.GrandTotal.Equal(want.GrandTotal))
		assert.True(t, got.Subtotal.Equal(want.Subtotal))
		assert.True(t, got.TotalTax.Equal(want.TotalTax))
		assert.True(t, got.TotalDiscount.Equal(want.TotalDiscount))
	}
}

func TestComputeTotals_RoundsHalfUpOnce(t *testing.T) {
	// A single line of 1.005 gross: per-line rounding would truncate to
	// 1.00 in bankers' schemes; the aggregate rounds half-up to 1.01.
	item, err := buildItem(ItemParams{Quantity: 1, UnitPrice: dec("1.005")}, testProduct("0"), dec("100"))
	require.NoError(t, err)

	totals := computeTotals([]Item{item}, 2)

	assert.True(t, totals.GrandTotal.Equal(dec("1.01")),
		"grand total = %s, want 1.01", totals.GrandTotal)
}

func TestComputeTotals_Simple(t *testing.T) {
	item, err := buildItem(ItemParams{Quantity: 1, UnitPrice: dec("100.00")}, testProduct("0"), dec("100"))
	require.NoError(t, err)

	totals := computeTotals([]Item{item}, 2)

	assert.True(t, totals.GrandTotal.Equal(dec("100.00")))
	assert.True(t, totals.Subtotal.Equal(dec("100.00")))
	assert.True(t, totals.TotalTax.IsZero())
	assert.True(t, totals.TotalDiscount.IsZero())
}

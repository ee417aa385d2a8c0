// Package receipt renders a persisted sale as a printable plain-text
// receipt with locale-aware currency formatting.
package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tillworks/till/internal/sale"
)

type Config struct {
	StoreName    string
	CurrencyCode string
	Precision    int32
	Locale       string
}

// Render produces the receipt for a sale. Amounts are formatted with the
// configured currency unit; an unknown ISO code falls back to the plain
// decimal string.
func Render(sl *sale.Sale, cfg Config) string {
	tag := language.English
	if cfg.Locale != "" {
		if parsed, err := language.Parse(cfg.Locale); err == nil {
			tag = parsed
		}
	}

	printer := message.NewPrinter(tag)
	unit, unitErr := currency.ParseISO(cfg.CurrencyCode)

	amount := func(d decimal.Decimal) string {
		fixed := d.StringFixed(cfg.Precision)
		if unitErr != nil {
			return fixed
		}

		return printer.Sprintf("%v", currency.Symbol(unit.Amount(fixed)))
	}

	var b strings.Builder

	if cfg.StoreName != "" {
		fmt.Fprintf(&b, "%s\n", cfg.StoreName)
	}

	fmt.Fprintf(&b, "Receipt %s\n", sl.Number)
	fmt.Fprintf(&b, "%s\n", sl.CreatedAt.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("-", 38) + "\n")

	for _, item := range sl.Items {
		fmt.Fprintf(&b, "%-24s %3d x %s\n", item.ProductName, item.Quantity, amount(item.UnitPrice))

		if item.DiscountAmount.IsPositive() {
			fmt.Fprintf(&b, "  discount %s\n", amount(item.DiscountAmount))
		}

		fmt.Fprintf(&b, "%38s\n", amount(item.LineTotal))
	}

	b.WriteString(strings.Repeat("-", 38) + "\n")
	fmt.Fprintf(&b, "Subtotal %29s\n", amount(sl.Subtotal))
	fmt.Fprintf(&b, "Tax %34s\n", amount(sl.TotalTax))
	fmt.Fprintf(&b, "Discount %29s\n", amount(sl.TotalDiscount))
	fmt.Fprintf(&b, "TOTAL %32s\n", amount(sl.GrandTotal))
	b.WriteString(strings.Repeat("-", 38) + "\n")

	for _, p := range sl.Payments {
		fmt.Fprintf(&b, "%-10s %26s\n", strings.ToUpper(string(p.Method)), amount(p.Amount))

		if p.Cash != nil && p.Cash.Change.IsPositive() {
			fmt.Fprintf(&b, "  change %s\n", amount(p.Cash.Change))
		}
	}

	if sl.Status == sale.StatusCancelled {
		fmt.Fprintf(&b, "\n*** CANCELLED: %s ***\n", sl.CancelReason)
	}

	return b.String()
}

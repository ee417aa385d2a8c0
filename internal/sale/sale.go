package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a sale. Pending only exists
// between assembly and the atomic persist; it is never visible to readers.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Method enumerates the supported payment instruments.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodCredit   Method = "credit"
)

// Sale is a completed point-of-sale transaction together with its items
// and payments. Totals are authoritative server-side values; the grand
// total always equals subtotal + tax - discount at the configured
// currency precision.
type Sale struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	Number        string
	Status        Status
	Subtotal      decimal.Decimal
	TotalTax      decimal.Decimal
	TotalDiscount decimal.Decimal
	GrandTotal    decimal.Decimal
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	Notes         string
	Items         []Item
	Payments      []Payment
	CreatedAt     time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// Item is a sale line. UnitPrice is captured at time of sale and never
// re-derived from the catalog. DiscountAmount is the resolved effective
// discount: the larger of the fixed discount and the percentage discount
// over the gross line amount.
type Item struct {
	ID              int64
	SaleID          uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountFixed   decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	LineTotal       decimal.Decimal
}

// Gross returns quantity times unit price before discount and tax.
func (i Item) Gross() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Payment records one instrument used to settle a sale. Exactly one of
// the detail fields matching Method is set; the others are nil, so there
// is no null-checking of fields that don't apply to the method.
type Payment struct {
	ID        int64
	SaleID    uuid.UUID
	Method    Method
	Amount    decimal.Decimal
	Cash      *CashDetails
	Card      *CardDetails
	Transfer  *TransferDetails
	Credit    *CreditDetails
	CreatedAt time.Time
}

// CashDetails records the tendered cash and the change handed back.
type CashDetails struct {
	Received decimal.Decimal
	Change   decimal.Decimal
}

// CardDetails identifies a card payment. Both fields are required.
type CardDetails struct {
	CardType  string
	Reference string
}

// TransferDetails identifies a bank transfer. Both fields are required.
type TransferDetails struct {
	Bank      string
	Reference string
}

// CreditDetails identifies a store-credit payment. At least one of
// CustomerID and Reference must be set.
type CreditDetails struct {
	CustomerID *uuid.UUID
	Reference  string
}

// NetContribution is the amount this payment actually puts toward the
// sale total. Cash contributes what is retained after giving change;
// every other method contributes its full amount.
func (p Payment) NetContribution() decimal.Decimal {
	if p.Method == MethodCash && p.Cash != nil {
		return p.Amount.Sub(p.Cash.Change)
	}

	return p.Amount
}

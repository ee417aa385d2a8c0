package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/sale"
)

type saleResponse struct {
	ID            uuid.UUID         `json:"id"`
	Number        string            `json:"number"`
	Status        sale.Status       `json:"status"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TotalTax      decimal.Decimal   `json:"total_tax"`
	TotalDiscount decimal.Decimal   `json:"total_discount"`
	GrandTotal    decimal.Decimal   `json:"grand_total"`
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Items         []itemResponse    `json:"items,omitempty"`
	Payments      []paymentResponse `json:"payments,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason  string            `json:"cancel_reason,omitempty"`
}

type itemResponse struct {
	ID              int64           `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountFixed   decimal.Decimal `json:"discount_fixed"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type paymentResponse struct {
	ID              int64           `json:"id"`
	Method          sale.Method     `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	CashReceived    decimal.Decimal `json:"cash_received,omitempty"`
	ChangeReturned  decimal.Decimal `json:"change_returned,omitempty"`
	CardType        string          `json:"card_type,omitempty"`
	Bank            string          `json:"bank,omitempty"`
	Reference       string          `json:"reference,omitempty"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	CreditReference string          `json:"credit_reference,omitempty"`
}

func toResponse(sl *sale.Sale) saleResponse {
	resp := saleResponse{
		ID:            sl.ID,
		Number:        sl.Number,
		Status:        sl.Status,
		Subtotal:      sl.Subtotal,
		TotalTax:      sl.TotalTax,
		TotalDiscount: sl.TotalDiscount,
		GrandTotal:    sl.GrandTotal,
		CustomerID:    sl.CustomerID,
		Notes:         sl.Notes,
		CreatedAt:     sl.CreatedAt,
		CancelledAt:   sl.CancelledAt,
		CancelReason:  sl.CancelReason,
	}

	for _, item := range sl.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			DiscountFixed:   item.DiscountFixed,
			DiscountAmount:  item.DiscountAmount,
			TaxAmount:       item.TaxAmount,
			LineTotal:       item.LineTotal,
		})
	}

	for _, p := range sl.Payments {
		pr := paymentResponse{
			ID:     p.ID,
			Method: p.Method,
			Amount: p.Amount,
		}

		switch {
		case p.Cash != nil:
			pr.CashReceived = p.Cash.Received
			pr.ChangeReturned = p.Cash.Change
		case p.Card != nil:
			pr.CardType = p.Card.CardType
			pr.Reference = p.Card.Reference
		case p.Transfer != nil:
			pr.Bank = p.Transfer.Bank
			pr.Reference = p.Transfer.Reference
		case p.Credit != nil:
			pr.CustomerID = p.Credit.CustomerID
			pr.CreditReference = p.Credit.Reference
		}

		resp.Payments = append(resp.Payments, pr)
	}

	return resp
}

func toResponseList(sales []*sale.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, sl := range sales {
		resp[i] = toResponse(sl)
	}

	return resp
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/sale"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectSaleColumns = `
	s.id, s.tenant_id, s.number, s.status, s.subtotal, s.total_tax, s.total_discount,
	s.grand_total, s.user_id, s.customer_id, s.notes, s.created_at, s.cancelled_at, s.cancel_reason
`

func scanSale(sc scanner) (*sale.Sale, error) {
	var sl sale.Sale

	var statusStr string

	var customerID *uuid.UUID

	var notes, cancelReason sql.NullString

	if err := sc.Scan(
		&sl.ID, &sl.TenantID, &sl.Number, &statusStr, &sl.Subtotal, &sl.TotalTax,
		&sl.TotalDiscount, &sl.GrandTotal, &sl.UserID, &customerID, &notes,
		&sl.CreatedAt, &sl.CancelledAt, &cancelReason,
	); err != nil {
		return nil, err
	}

	sl.Status = sale.Status(statusStr)
	sl.CustomerID = customerID
	sl.Notes = notes.String
	sl.CancelReason = cancelReason.String

	return &sl, nil
}

// CreateSale writes the sale, its items and its payments in one database
// transaction. Either every row lands or none does; no reader can ever
// observe a sale without its children.
func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	saleQuery := `
		INSERT INTO sales (tenant_id, number, status, subtotal, total_tax, total_discount,
			grand_total, user_id, customer_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, saleQuery,
		sl.TenantID,
		sl.Number,
		sl.Status,
		sl.Subtotal,
		sl.TotalTax,
		sl.TotalDiscount,
		sl.GrandTotal,
		sl.UserID,
		sl.CustomerID,
		nullString(sl.Notes),
	).Scan(&sl.ID, &sl.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price,
			discount_percent, discount_fixed, discount_amount, tax_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	for i := range sl.Items {
		item := &sl.Items[i]
		item.SaleID = sl.ID

		err := dbTx.QueryRowContext(ctx, itemQuery,
			item.SaleID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.DiscountPercent,
			item.DiscountFixed,
			item.DiscountAmount,
			item.TaxAmount,
			item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("creating sale item %d: %w", i, err)
		}
	}

	paymentQuery := `
		INSERT INTO sale_payments (sale_id, method, amount, cash_received, change_returned,
			card_type, bank, reference, customer_id, credit_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	for i := range sl.Payments {
		p := &sl.Payments[i]
		p.SaleID = sl.ID

		cols := paymentColumns(p)

		err := dbTx.QueryRowContext(ctx, paymentQuery,
			p.SaleID,
			p.Method,
			p.Amount,
			cols.cashReceived,
			cols.changeReturned,
			cols.cardType,
			cols.bank,
			cols.reference,
			cols.customerID,
			cols.creditReference,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating payment %d: %w", i, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing sale: %w", err)
	}

	return nil
}

type paymentCols struct {
	cashReceived    decimal.NullDecimal
	changeReturned  decimal.NullDecimal
	cardType        sql.NullString
	bank            sql.NullString
	reference       sql.NullString
	customerID      *uuid.UUID
	creditReference sql.NullString
}

func paymentColumns(p *sale.Payment) paymentCols {
	var cols paymentCols

	switch {
	case p.Cash != nil:
		cols.cashReceived = decimal.NewNullDecimal(p.Cash.Received)
		cols.changeReturned = decimal.NewNullDecimal(p.Cash.Change)
	case p.Card != nil:
		cols.cardType = nullString(p.Card.CardType)
		cols.reference = nullString(p.Card.Reference)
	case p.Transfer != nil:
		cols.bank = nullString(p.Transfer.Bank)
		cols.reference = nullString(p.Transfer.Reference)
	case p.Credit != nil:
		cols.customerID = p.Credit.CustomerID
		cols.creditReference = nullString(p.Credit.Reference)
	}

	return cols
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + `
		FROM sales s
		WHERE s.id = $1 AND s.tenant_id = $2`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, saleID, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	if sl.Items, err = s.saleItems(ctx, sl.ID); err != nil {
		return nil, err
	}

	if sl.Payments, err = s.salePayments(ctx, sl.ID); err != nil {
		return nil, err
	}

	return sl, nil
}

func (s *Store) saleItems(ctx context.Context, saleID uuid.UUID) ([]sale.Item, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price,
			discount_percent, discount_fixed, discount_amount, tax_amount, line_total
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("listing sale items: %w", err)
	}
	defer rows.Close()

	var items []sale.Item

	for rows.Next() {
		var item sale.Item

		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName, &item.Quantity,
			&item.UnitPrice, &item.DiscountPercent, &item.DiscountFixed,
			&item.DiscountAmount, &item.TaxAmount, &item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scanning sale item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale item rows: %w", err)
	}

	return items, nil
}

func (s *Store) salePayments(ctx context.Context, saleID uuid.UUID) ([]sale.Payment, error) {
	query := `
		SELECT id, sale_id, method, amount, cash_received, change_returned,
			card_type, bank, reference, customer_id, credit_reference, created_at
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []sale.Payment

	for rows.Next() {
		var (
			p              sale.Payment
			methodStr      string
			cashReceived   decimal.NullDecimal
			changeReturned decimal.NullDecimal
			cardType       sql.NullString
			bank           sql.NullString
			reference      sql.NullString
			customerID     *uuid.UUID
			creditRef      sql.NullString
		)

		if err := rows.Scan(
			&p.ID, &p.SaleID, &methodStr, &p.Amount, &cashReceived, &changeReturned,
			&cardType, &bank, &reference, &customerID, &creditRef, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		p.Method = sale.Method(methodStr)

		switch p.Method {
		case sale.MethodCash:
			p.Cash = &sale.CashDetails{
				Received: cashReceived.Decimal,
				Change:   changeReturned.Decimal,
			}
		case sale.MethodCard:
			p.Card = &sale.CardDetails{
				CardType:  cardType.String,
				Reference: reference.String,
			}
		case sale.MethodTransfer:
			p.Transfer = &sale.TransferDetails{
				Bank:      bank.String,
				Reference: reference.String,
			}
		case sale.MethodCredit:
			p.Credit = &sale.CreditDetails{
				CustomerID: customerID,
				Reference:  creditRef.String,
			}
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

// ListSales returns the tenant's sales without their children; callers
// needing items and payments fetch the sale by id.
func (s *Store) ListSales(ctx context.Context, tenantID uuid.UUID, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + `
		FROM sales s
		WHERE s.tenant_id = $1`

	args := []any{tenantID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND s.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND s.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND s.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY s.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

// CancelSale flips a completed sale to cancelled. The row predicate on
// status makes the transition race-free: a concurrent cancel loses and
// sees no affected rows.
func (s *Store) CancelSale(ctx context.Context, tenantID, saleID uuid.UUID, reason string, at time.Time) error {
	query := `
		UPDATE sales
		SET status = $1, cancel_reason = $2, cancelled_at = $3
		WHERE id = $4 AND tenant_id = $5 AND status = $6
	`

	res, err := s.db.ExecContext(ctx, query,
		sale.StatusCancelled, reason, at, saleID, tenantID, sale.StatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("cancelling sale: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancelling sale: %w", err)
	}

	if affected == 0 {
		return sale.ErrNotCancellable
	}

	return nil
}

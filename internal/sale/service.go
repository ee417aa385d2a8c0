package sale

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/catalog"
	"github.com/tillworks/till/internal/customer"
	"github.com/tillworks/till/internal/sequence"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale

// Repository persists sales. CreateSale must write the sale, its items
// and its payments as one atomic unit: either all rows land or none do.
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Sale, error)
	CancelSale(ctx context.Context, tenantID, saleID uuid.UUID, reason string, at time.Time) error
}

// Catalog resolves products within the tenant scope.
type Catalog interface {
	GetActiveProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error)
}

// Customers resolves customer references within the tenant scope.
type Customers interface {
	GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*customer.Customer, error)
}

// Sequences issues per-tenant transaction numbers.
type Sequences interface {
	Next(ctx context.Context, tenantID uuid.UUID, series sequence.Series) (int64, error)
}

// Policy carries the register configuration the engine consumes but
// never computes.
type Policy struct {
	CurrencyPrecision  int32
	ReceiptPrefix      string
	NumberWidth        int
	MaxDiscountPercent decimal.Decimal
	CancelWindow       time.Duration
	EnabledMethods     map[Method]bool
}

// MethodEnabled reports whether the method may be used. An empty map
// means every method is enabled.
func (p Policy) MethodEnabled(m Method) bool {
	if len(p.EnabledMethods) == 0 {
		return true
	}

	return p.EnabledMethods[m]
}

type ItemParams struct {
	ProductID       uuid.UUID
	Quantity        int64
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountFixed   decimal.Decimal
	TaxAmount       *decimal.Decimal
}

type PaymentParams struct {
	Method          Method
	Amount          decimal.Decimal
	AmountReceived  decimal.Decimal
	ChangeReturned  decimal.Decimal
	CardType        string
	Bank            string
	Reference       string
	CustomerID      *uuid.UUID
	CreditReference string
}

type CreateParams struct {
	Items      []ItemParams
	Payments   []PaymentParams
	CustomerID *uuid.UUID
	Notes      string
}

type ListFilter struct {
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// Service coordinates sale creation: tenant checks, totaling, payment
// reconciliation, number allocation and the atomic persist, in that
// order. Any failure before the persist leaves no state behind; a
// failure during the persist may burn a sequence number but never
// leaves a partial sale.
type Service struct {
	repo      Repository
	catalog   Catalog
	customers Customers
	sequences Sequences
	policy    Policy
}

func NewService(repo Repository, cat Catalog, customers Customers, sequences Sequences, policy Policy) *Service {
	return &Service{
		repo:      repo,
		catalog:   cat,
		customers: customers,
		sequences: sequences,
		policy:    policy,
	}
}

// CreateSale validates the proposed sale, computes authoritative totals,
// reconciles payments against them, allocates a receipt number and
// persists everything atomically.
func (s *Service) CreateSale(ctx context.Context, tenantID, userID uuid.UUID, params CreateParams) (*Sale, error) {
	if params.CustomerID != nil {
		if _, err := s.customers.GetCustomer(ctx, tenantID, *params.CustomerID); err != nil {
			if errors.Is(err, customer.ErrNotFound) {
				return nil, &TenantViolationError{Resource: "customer", ID: *params.CustomerID}
			}

			return nil, fmt.Errorf("resolving customer: %w", err)
		}
	}

	items, totals, err := s.validateAndTotal(ctx, tenantID, params.Items)
	if err != nil {
		return nil, err
	}

	payments, err := reconcile(params.Payments, totals.GrandTotal, s.policy.MethodEnabled)
	if err != nil {
		return nil, err
	}

	number, err := s.sequences.Next(ctx, tenantID, sequence.SeriesReceipt)
	if err != nil {
		return nil, &AllocationError{Err: err}
	}

	sl := &Sale{
		TenantID:      tenantID,
		Number:        sequence.Format(s.policy.ReceiptPrefix, s.policy.NumberWidth, number),
		Status:        StatusPending,
		Subtotal:      totals.Subtotal,
		TotalTax:      totals.TotalTax,
		TotalDiscount: totals.TotalDiscount,
		GrandTotal:    totals.GrandTotal,
		UserID:        userID,
		CustomerID:    params.CustomerID,
		Notes:         params.Notes,
		Items:         items,
		Payments:      payments,
	}

	// Pending is transient: the persisted sale is already completed and
	// no reader can ever observe the intermediate state.
	sl.Status = StatusCompleted

	if err := s.repo.CreateSale(ctx, sl); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return sl, nil
}

// validateAndTotal resolves every line's product within the tenant and
// computes the authoritative totals. It is pure apart from catalog
// reads; stock movement belongs to the inventory service, not here.
func (s *Service) validateAndTotal(ctx context.Context, tenantID uuid.UUID, params []ItemParams) ([]Item, Totals, error) {
	if len(params) == 0 {
		return nil, Totals{}, invalidf("items", "at least one line item is required")
	}

	items := make([]Item, 0, len(params))

	for i, ip := range params {
		product, err := s.catalog.GetActiveProduct(ctx, tenantID, ip.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, Totals{}, invalidf("items", "product %s at position %d does not exist or is inactive", ip.ProductID, i)
			}

			return nil, Totals{}, fmt.Errorf("resolving product %s: %w", ip.ProductID, err)
		}

		item, err := buildItem(ip, product, s.policy.MaxDiscountPercent)
		if err != nil {
			return nil, Totals{}, err
		}

		items = append(items, item)
	}

	return items, computeTotals(items, s.policy.CurrencyPrecision), nil
}

// CancelSale transitions a completed sale to cancelled, recording the
// reason and timestamp. The sale and its children are kept, never
// deleted. The transition is subject to the configured time limit since
// creation.
func (s *Service) CancelSale(ctx context.Context, tenantID, saleID uuid.UUID, reason string) (*Sale, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalidf("reason", "a cancellation reason is required")
	}

	sl, err := s.repo.GetSale(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	if sl.Status != StatusCompleted {
		return nil, ErrNotCancellable
	}

	now := time.Now()
	if s.policy.CancelWindow > 0 && now.Sub(sl.CreatedAt) > s.policy.CancelWindow {
		return nil, ErrCancelWindowClosed
	}

	if err := s.repo.CancelSale(ctx, tenantID, saleID, reason, now); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	sl.Status = StatusCancelled
	sl.CancelledAt = &now
	sl.CancelReason = reason

	return sl, nil
}

func (s *Service) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, tenantID, saleID)
}

func (s *Service) ListSales(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, tenantID, filter)
}

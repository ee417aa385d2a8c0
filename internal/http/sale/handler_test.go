package sale_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tillworks/till/internal/catalog"
	"github.com/tillworks/till/internal/customer"
	saleHandler "github.com/tillworks/till/internal/http/sale"
	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
	"github.com/tillworks/till/internal/sequence"
	"github.com/tillworks/till/internal/tenant"
)

type fixture struct {
	router    http.Handler
	repo      *sale.MockRepository
	catalog   *sale.MockCatalog
	customers *sale.MockCustomers
	sequences *sale.MockSequences
	tenantID  uuid.UUID
	userID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:      sale.NewMockRepository(ctrl),
		catalog:   sale.NewMockCatalog(ctrl),
		customers: sale.NewMockCustomers(ctrl),
		sequences: sale.NewMockSequences(ctrl),
		tenantID:  uuid.New(),
		userID:    uuid.New(),
	}

	policy := sale.Policy{
		CurrencyPrecision:  2,
		ReceiptPrefix:      "RCP",
		NumberWidth:        6,
		MaxDiscountPercent: decimal.RequireFromString("100"),
		CancelWindow:       24 * time.Hour,
	}

	svc := sale.NewService(f.repo, f.catalog, f.customers, f.sequences, policy)
	h := saleHandler.NewHandler(svc, receipt.Config{CurrencyCode: "EUR", Precision: 2})

	router := chi.NewRouter()
	router.Route("/sales", h.Routes)
	f.router = router

	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	ctx := tenant.NewContext(req.Context(), f.tenantID)
	ctx = tenant.WithUser(ctx, f.userID)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req.WithContext(ctx))

	return rec
}

func createBody(productID uuid.UUID) string {
	return `{
		"items": [{"product_id": "` + productID.String() + `", "quantity": 1, "unit_price": "100.00"}],
		"payments": [{"method": "card", "amount": "100.00", "card_type": "VISA", "reference": "X"}]
	}`
}

func TestHandler_Create(t *testing.T) {
	productID := uuid.New()

	product := &catalog.Product{ID: productID, Name: "Coffee", TaxRate: decimal.Zero, Active: true}

	t.Run("Created", func(t *testing.T) {
		f := newFixture(t)

		f.catalog.EXPECT().
			GetActiveProduct(gomock.Any(), f.tenantID, productID).
			Return(product, nil)
		f.sequences.EXPECT().
			Next(gomock.Any(), f.tenantID, sequence.SeriesReceipt).
			Return(int64(1), nil)
		f.repo.EXPECT().
			CreateSale(gomock.Any(), gomock.Any()).
			Return(nil)

		rec := f.do(t, http.MethodPost, "/sales", createBody(productID))

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "RCP-000001", resp["number"])
		assert.Equal(t, "completed", resp["status"])
	})

	t.Run("ValidationIs422", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/sales", `{"items": [], "payments": []}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "items", resp["field"])
	})

	t.Run("InsufficientPaymentReportsShortfall", func(t *testing.T) {
		f := newFixture(t)

		f.catalog.EXPECT().
			GetActiveProduct(gomock.Any(), f.tenantID, productID).
			Return(product, nil)

		body := `{
			"items": [{"product_id": "` + productID.String() + `", "quantity": 1, "unit_price": "100.00"}],
			"payments": [{"method": "card", "amount": "40.00", "card_type": "VISA", "reference": "X"}]
		}`

		rec := f.do(t, http.MethodPost, "/sales", body)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "60", resp["shortfall"])
	})

	t.Run("ForeignCustomerReadsAsNotFound", func(t *testing.T) {
		f := newFixture(t)

		customerID := uuid.New()

		f.customers.EXPECT().
			GetCustomer(gomock.Any(), f.tenantID, customerID).
			Return(nil, customer.ErrNotFound)

		body := `{
			"items": [{"product_id": "` + productID.String() + `", "quantity": 1, "unit_price": "100.00"}],
			"payments": [{"method": "card", "amount": "100.00", "card_type": "VISA", "reference": "X"}],
			"customer_id": "` + customerID.String() + `"
		}`

		rec := f.do(t, http.MethodPost, "/sales", body)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("MissingTenantIs401", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(createBody(productID)))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	t.Run("EndDateCoversWholeDay", func(t *testing.T) {
		f := newFixture(t)

		var got sale.ListFilter

		f.repo.EXPECT().
			ListSales(gomock.Any(), f.tenantID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, filter sale.ListFilter) ([]*sale.Sale, error) {
				got = filter
				return nil, nil
			})

		rec := f.do(t, http.MethodGet, "/sales?start_date=2026-08-01&end_date=2026-08-27", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got.StartDate)
		require.NotNil(t, got.EndDate)

		assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *got.StartDate)

		// A sale rung up late on the 27th still falls inside the range.
		lastMoment := time.Date(2026, 8, 27, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		assert.Equal(t, lastMoment, *got.EndDate)
	})

	t.Run("StatusFilterPassedThrough", func(t *testing.T) {
		f := newFixture(t)

		var got sale.ListFilter

		f.repo.EXPECT().
			ListSales(gomock.Any(), f.tenantID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, filter sale.ListFilter) ([]*sale.Sale, error) {
				got = filter
				return nil, nil
			})

		rec := f.do(t, http.MethodGet, "/sales?status=cancelled", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got.Status)
		assert.Equal(t, sale.StatusCancelled, *got.Status)
	})
}

func TestHandler_Cancel(t *testing.T) {
	saleID := uuid.New()

	t.Run("Conflict", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetSale(gomock.Any(), f.tenantID, saleID).
			Return(&sale.Sale{
				ID:        saleID,
				TenantID:  f.tenantID,
				Status:    sale.StatusCancelled,
				CreatedAt: time.Now(),
			}, nil)

		rec := f.do(t, http.MethodPost, "/sales/"+saleID.String()+"/cancel", `{"reason": "oops"}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().
			GetSale(gomock.Any(), f.tenantID, saleID).
			Return(nil, sale.ErrNotFound)

		rec := f.do(t, http.MethodPost, "/sales/"+saleID.String()+"/cancel", `{"reason": "oops"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

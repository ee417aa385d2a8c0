package sale

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/receipt"
	"github.com/tillworks/till/internal/sale"
	"github.com/tillworks/till/internal/tenant"
)

type Handler struct {
	svc        *sale.Service
	receiptCfg receipt.Config
}

func NewHandler(svc *sale.Service, receiptCfg receipt.Config) *Handler {
	return &Handler{svc: svc, receiptCfg: receiptCfg}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/receipt", h.printReceipt)
	r.Post("/{id}/cancel", h.cancel)
}

type createItemRequest struct {
	ProductID       uuid.UUID        `json:"product_id"`
	Quantity        int64            `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	DiscountFixed   decimal.Decimal  `json:"discount_fixed"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
}

type createPaymentRequest struct {
	Method          sale.Method     `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	ChangeReturned  decimal.Decimal `json:"change_returned"`
	CardType        string          `json:"card_type"`
	Bank            string          `json:"bank"`
	Reference       string          `json:"reference"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	CreditReference string          `json:"credit_reference"`
}

type createSaleRequest struct {
	Items      []createItemRequest    `json:"items"`
	Payments   []createPaymentRequest `json:"payments"`
	CustomerID *uuid.UUID             `json:"customer_id,omitempty"`
	Notes      string                 `json:"notes"`
}

func (req createSaleRequest) toParams() sale.CreateParams {
	params := sale.CreateParams{
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
	}

	for _, item := range req.Items {
		params.Items = append(params.Items, sale.ItemParams{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			DiscountFixed:   item.DiscountFixed,
			TaxAmount:       item.TaxAmount,
		})
	}

	for _, p := range req.Payments {
		params.Payments = append(params.Payments, sale.PaymentParams{
			Method:          p.Method,
			Amount:          p.Amount,
			AmountReceived:  p.AmountReceived,
			ChangeReturned:  p.ChangeReturned,
			CardType:        p.CardType,
			Bank:            p.Bank,
			Reference:       p.Reference,
			CustomerID:      p.CustomerID,
			CreditReference: p.CreditReference,
		})
	}

	return params
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := scope(w, r)
	if !ok {
		return
	}

	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sl, err := h.svc.CreateSale(r.Context(), tenantID, userID, req.toParams())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(sl))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := scope(w, r)
	if !ok {
		return
	}

	filter := sale.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := sale.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = &t
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			// The filter covers the whole named day, not just its midnight.
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndDate = &end
		}
	}

	sales, err := h.svc.ListSales(r.Context(), tenantID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(sales))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := scope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sl, err := h.svc.GetSale(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sl))
}

func (h *Handler) printReceipt(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := scope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sl, err := h.svc.GetSale(r.Context(), tenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(receipt.Render(sl, h.receiptCfg))); err != nil {
		slog.Error("failed to write receipt", "error", err)
	}
}

type cancelSaleRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, _, ok := scope(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req cancelSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sl, err := h.svc.CancelSale(r.Context(), tenantID, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sl))
}

func scope(w http.ResponseWriter, r *http.Request) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, ok = tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "no tenant in scope", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	userID, _ = tenant.UserFromContext(r.Context())

	return tenantID, userID, true
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Shortfall string `json:"shortfall,omitempty"`
}

// writeError maps the engine's error taxonomy onto status codes. Tenant
// violations deliberately read as not-found so foreign resources are
// never confirmed to exist.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr   *sale.ValidationError
		insufficientErr *sale.InsufficientPaymentError
		tenantErr       *sale.TenantViolationError
		allocationErr   *sale.AllocationError
		persistenceErr  *sale.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})
	case errors.As(err, &insufficientErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:     insufficientErr.Error(),
			Shortfall: insufficientErr.Shortfall.String(),
		})
	case errors.As(err, &tenantErr), errors.Is(err, sale.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, sale.ErrNotCancellable), errors.Is(err, sale.ErrCancelWindowClosed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &allocationErr), errors.As(err, &persistenceErr):
		slog.Error("sale write failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "temporary failure, safe to retry"})
	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

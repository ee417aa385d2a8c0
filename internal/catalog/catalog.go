package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product does not exist, is inactive, or
// belongs to another tenant. Callers cannot distinguish the three cases.
var ErrNotFound = errors.New("product not found")

// Product is a sellable item in a tenant's catalog. UnitPrice is the
// current list price; sales capture the price at time of sale and never
// re-derive it from here.
type Product struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	SKU       string
	Name      string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percentage, e.g. 21 for 21%
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

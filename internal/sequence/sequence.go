// Package sequence issues per-tenant transaction numbers. Numbers within
// one (tenant, series) pair are strictly increasing and duplicate-free
// under concurrency; gaps are tolerated when an enclosing sale aborts
// after allocation.
package sequence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Series distinguishes independent numbering streams within a tenant.
type Series string

const (
	SeriesReceipt Series = "receipt"
	SeriesInvoice Series = "invoice"
)

// Allocator issues the next number in a tenant's series. Implementations
// must perform the read-increment-store as a single atomic step so two
// concurrent callers can never observe the same value.
type Allocator interface {
	Next(ctx context.Context, tenantID uuid.UUID, series Series) (int64, error)
}

// Format renders an allocated number with the tenant's configured prefix
// and zero-padding, e.g. Format("RCP", 6, 42) == "RCP-000042".
func Format(prefix string, width int, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

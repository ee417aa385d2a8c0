// Package tenant carries the active tenant and acting user through the
// request context. Every repository call in the engine is scoped by the
// tenant id resolved here; there is no ambient default.
package tenant

import (
	"context"

	"github.com/google/uuid"
)

type tenantKey struct{}

type userKey struct{}

// NewContext returns a context scoped to the given tenant.
func NewContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// FromContext returns the active tenant id, if one was resolved.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey{}).(uuid.UUID)
	return id, ok
}

// WithUser returns a context carrying the acting user id.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFromContext returns the acting user id, if one was resolved.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey{}).(uuid.UUID)
	return id, ok
}

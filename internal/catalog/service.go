package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetActiveProduct(ctx context.Context, tenantID, productID uuid.UUID) (*Product, error)
	ListActiveProducts(ctx context.Context, tenantID uuid.UUID) ([]*Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetActiveProduct returns the product only if it exists, is active and
// belongs to the tenant.
func (s *Service) GetActiveProduct(ctx context.Context, tenantID, productID uuid.UUID) (*Product, error) {
	return s.repo.GetActiveProduct(ctx, tenantID, productID)
}

func (s *Service) ListActiveProducts(ctx context.Context, tenantID uuid.UUID) ([]*Product, error) {
	return s.repo.ListActiveProducts(ctx, tenantID)
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillworks/till/internal/customer"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*customer.Customer, error) {
	query := `
		SELECT c.id, c.tenant_id, c.name, c.email, c.phone, c.created_at
		FROM customers c
		WHERE c.id = $1 AND c.tenant_id = $2 AND c.deleted_at IS NULL
	`

	var c customer.Customer

	err := s.db.QueryRowContext(ctx, query, customerID, tenantID).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return &c, nil
}

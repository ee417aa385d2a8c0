package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillworks/till/internal/catalog"
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

const selectProductColumns = `
	p.id, p.tenant_id, p.sku, p.name, p.unit_price, p.tax_rate, p.active, p.created_at, p.updated_at
`

func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	if err := s.Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.UnitPrice, &p.TaxRate, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) GetActiveProduct(ctx context.Context, tenantID, productID uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.id = $1 AND p.tenant_id = $2 AND p.active AND p.deleted_at IS NULL`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, productID, tenantID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListActiveProducts(ctx context.Context, tenantID uuid.UUID) ([]*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.tenant_id = $1 AND p.active AND p.deleted_at IS NULL
		ORDER BY p.name ASC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

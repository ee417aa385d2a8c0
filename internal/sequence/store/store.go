package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillworks/till/internal/sequence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Next increments and returns the counter for the tenant's series. The
// upsert is a single statement, so the row lock taken by the UPDATE arm
// serializes concurrent allocations; there is no unguarded read-then-write
// window.
func (s *Store) Next(ctx context.Context, tenantID uuid.UUID, series sequence.Series) (int64, error) {
	query := `
		INSERT INTO sequence_counters (tenant_id, series, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, series)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value
	`

	var value int64
	if err := s.db.QueryRowContext(ctx, query, tenantID, series).Scan(&value); err != nil {
		return 0, fmt.Errorf("allocating %s number: %w", series, err)
	}

	return value, nil
}

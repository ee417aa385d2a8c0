package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tillworks/till/internal/tenant"
)

func TestFromContext(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		id := uuid.New()
		ctx := tenant.NewContext(context.Background(), id)

		got, ok := tenant.FromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("Absent", func(t *testing.T) {
		_, ok := tenant.FromContext(context.Background())
		assert.False(t, ok)
	})
}

func TestUserFromContext(t *testing.T) {
	id := uuid.New()
	ctx := tenant.WithUser(context.Background(), id)

	got, ok := tenant.UserFromContext(ctx)

	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = tenant.UserFromContext(context.Background())
	assert.False(t, ok)
}

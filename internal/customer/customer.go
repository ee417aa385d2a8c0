package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a customer does not exist within the
// tenant. Foreign-tenant customers read the same as missing ones.
var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

package auditlog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an order has no audit records.
var ErrNotFound = errors.New("audit record not found")

// Repository persists audit records. The trail is append-only.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
}

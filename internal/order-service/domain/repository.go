package domain

import (
	"context"
	"errors"
)

// ErrOrderNotFound is returned by lookups for an unknown order ID.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the store behind the pipeline's persistence stage plus
// the read side used by the HTTP API.
type OrderRepository interface {
	Insert(ctx context.Context, order PricedOrder) (PersistedOrder, error)
	Get(ctx context.Context, id OrderID) (PersistedOrder, error)
}

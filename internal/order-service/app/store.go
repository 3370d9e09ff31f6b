// Package app holds the in-memory order store used in development and tests.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/constants"
)

var _ domain.OrderRepository = (*MemoryStore)(nil)

// MemoryStore keeps orders in a map. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]domain.PersistedOrder
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[domain.OrderID]domain.PersistedOrder),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Insert(ctx context.Context, order domain.PricedOrder) (domain.PersistedOrder, error) {
	if err := ctx.Err(); err != nil {
		return domain.PersistedOrder{}, &domain.PersistenceError{Cause: err}
	}

	saved := domain.PersistedOrder{
		PricedOrder: order,
		ID:          domain.OrderID(uuid.NewString()),
		Status:      domain.StatusPaid,
		CreatedAt:   s.now(),
	}
	items := make([]domain.LineItem, len(order.Items))
	copy(items, order.Items)
	saved.Items = items

	s.mu.Lock()
	s.orders[saved.ID] = saved
	s.mu.Unlock()

	reqID := constants.RequestID(ctx)
	slog.InfoContext(ctx, "order stored", "order_id", saved.ID, "request_id", reqID)
	return saved, nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.OrderID) (domain.PersistedOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.PersistedOrder{}, fmt.Errorf("order %s: %w", id, domain.ErrOrderNotFound)
	}
	return order, nil
}

// Len reports how many orders are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

func pricedOrder() domain.PricedOrder {
	return domain.PricedOrder{
		OrderRequest: domain.OrderRequest{
			CustomerEmail: "a@b.com",
			Items:         []domain.LineItem{{SKU: "X", Quantity: 2, UnitPrice: decimal.NewFromInt(5)}},
		},
		Subtotal: decimal.NewFromInt(10),
		Discount: decimal.NewFromInt(1),
		Total:    decimal.NewFromInt(9),
	}
}

func TestMemoryStore_InsertAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved, err := store.Insert(ctx, pricedOrder())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, domain.StatusPaid, saved.Status)
	require.False(t, saved.CreatedAt.IsZero())

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
	require.True(t, got.Total.Equal(decimal.NewFromInt(9)))
}

func TestMemoryStore_UniqueIDs(t *testing.T) {
	store := NewMemoryStore()
	first, err := store.Insert(context.Background(), pricedOrder())
	require.NoError(t, err)
	second, err := store.Insert(context.Background(), pricedOrder())
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, 2, store.Len())
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Insert(ctx, pricedOrder())
	var perr *domain.PersistenceError
	require.True(t, errors.As(err, &perr))
	require.ErrorIs(t, err, context.Canceled)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pricedOrder() domain.PricedOrder {
	return domain.PricedOrder{
		OrderRequest: domain.OrderRequest{
			CustomerEmail: "a@b.com",
			CouponCode:    "SAVE10",
			Items: []domain.LineItem{
				{SKU: "X", Quantity: 2, UnitPrice: dec("5")},
				{SKU: "Y", Quantity: 1, UnitPrice: dec("0.10")},
			},
		},
		Subtotal: dec("10.10"),
		Discount: dec("1.01"),
		Total:    dec("9.09"),
	}
}

func TestInsert_RoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	saved, err := repo.Insert(ctx, pricedOrder())
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, domain.StatusPaid, saved.Status)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Fatalf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_AssignsDistinctIDs(t *testing.T) {
	repo := openTestRepo(t)
	a, err := repo.Insert(context.Background(), pricedOrder())
	require.NoError(t, err)
	b, err := repo.Insert(context.Background(), pricedOrder())
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestInsert_FailureIsPersistenceError(t *testing.T) {
	repo := openTestRepo(t)
	require.NoError(t, repo.Close())

	_, err := repo.Insert(context.Background(), pricedOrder())
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
}

func TestGet_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

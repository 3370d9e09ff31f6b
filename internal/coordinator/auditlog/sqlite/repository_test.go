package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSave_GetLatest(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	total := decimal.RequireFromString("9")
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, &auditlog.Record{
		Event: auditlog.EventOrderFailed, Stage: "notify", OrderID: "42",
		Total: &total, Error: "smtp down", TraceID: "t1", SpanID: "s1", At: base,
	}))
	require.NoError(t, repo.Save(ctx, &auditlog.Record{
		Event: auditlog.EventOrderProcessed, Stage: "audit", OrderID: "42",
		Total: &total, TraceID: "t1", SpanID: "s2", At: base.Add(time.Second),
	}))

	got, err := repo.GetLatest(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, auditlog.EventOrderProcessed, got.Event)
	require.NotNil(t, got.Total)
	require.True(t, got.Total.Equal(total))
	require.True(t, base.Add(time.Second).Equal(got.At))
}

func TestGetLatest_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetLatest(context.Background(), "missing")
	require.ErrorIs(t, err, auditlog.ErrNotFound)
}

func TestSave_NilTotal(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &auditlog.Record{
		Event: auditlog.EventOrderFailed, Stage: "validate", Error: "empty order",
		TraceID: "t2", At: time.Now(),
	}))

	recs, err := repo.ListByTrace(ctx, "t2")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Nil(t, recs[0].Total)
	require.Empty(t, recs[0].OrderID)
	require.Equal(t, "empty order", recs[0].Error)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), &auditlog.Record{Event: auditlog.EventOrderFailed, OrderID: "1", At: time.Now()}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetLatest(context.Background(), "1")
	require.NoError(t, err)
	require.Equal(t, auditlog.EventOrderFailed, got.Event)
}

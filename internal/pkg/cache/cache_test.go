package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache("orders")
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, c.Set(ctx, "k", []byte(`{"id":"1"}`), time.Minute))
	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"id":"1"}`, got)

	require.NoError(t, c.Set(ctx, "n", 42, 0))
	got, err = c.Get(ctx, "n")
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestMemoryCache_Expires(t *testing.T) {
	c := NewMemoryCache("orders")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	require.Eventually(t, func() bool {
		got, err := c.Get(ctx, "k")
		return err == nil && got == ""
	}, time.Second, 5*time.Millisecond)
}

func TestGenerateKey(t *testing.T) {
	require.Equal(t, "orders:create:abc", NewMemoryCache("orders").GenerateKey("create", "abc"))
	// The redis client connects lazily, so building one needs no server.
	require.Equal(t, "orders:create:abc", NewRedisCache("localhost:0", "orders").GenerateKey("create", "abc"))
}

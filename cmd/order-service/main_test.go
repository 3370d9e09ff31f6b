package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/config"
)

func TestBuildService_InMemory(t *testing.T) {
	c := config.Defaults()
	c.DB.Path = ""

	svc, err := buildService(context.Background(), c)
	require.NoError(t, err)
	defer svc.Close()

	require.Equal(t, []string{"EMAIL", "EVENTS", "SLACK", "SMS"}, svc.registry.Channels())

	// No SMTP host is configured, so the confirmation fails softly.
	result, err := svc.pipeline.Process(context.Background(), domain.OrderRequest{
		CustomerEmail: "a@b.com",
		Items:         []domain.LineItem{{SKU: "X", Quantity: 2, UnitPrice: mustDecimal(t, "5")}},
		CouponCode:    "SAVE10",
	})
	require.NoError(t, err)
	require.Equal(t, "9.00", result.Total.StringFixed(2))

	saved, err := svc.orders.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, saved.Status)
}

func TestBuildService_SQLite(t *testing.T) {
	c := config.Defaults()
	c.DB.Path = filepath.Join(t.TempDir(), "orders.db")
	c.Notification.Strict = true

	svc, err := buildService(context.Background(), c)
	require.NoError(t, err)
	defer svc.Close()

	result, err := svc.pipeline.Process(context.Background(), domain.OrderRequest{
		CustomerEmail: "a@b.com",
		Items:         []domain.LineItem{{SKU: "X", Quantity: 1, UnitPrice: mustDecimal(t, "3")}},
	})
	require.Error(t, err, "strict mode surfaces the missing mail transport")
	require.NotEmpty(t, result.OrderID)

	_, err = svc.orders.Get(context.Background(), result.OrderID)
	require.NoError(t, err)
}

func TestBuildService_BadCoupon(t *testing.T) {
	c := config.Defaults()
	c.DB.Path = ""
	c.Coupons = []config.CouponConfig{{Code: "BROKEN", Percent: "lots"}}

	_, err := buildService(context.Background(), c)
	require.Error(t, err)
}

func TestReadOrderRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	body, err := json.Marshal(map[string]any{
		"customer_email": "a@b.com",
		"items":          []map[string]any{{"sku": "X", "quantity": 1, "unit_price": "2.50"}},
		"coupon_code":    "SAVE10",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	req, err := readOrderRequest(path)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", req.CustomerEmail)
	require.Equal(t, "SAVE10", req.CouponCode)
	require.True(t, req.Items[0].UnitPrice.Equal(mustDecimal(t, "2.5")))

	_, err = readOrderRequest(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestBuildService_ConfiguredCouponsReplaceDefaults(t *testing.T) {
	c := config.Defaults()
	c.DB.Path = ""
	c.Coupons = []config.CouponConfig{{Code: "QUARTER", Percent: "25"}}

	svc, err := buildService(context.Background(), c)
	require.NoError(t, err)
	defer svc.Close()

	order := func(code string) domain.OrderRequest {
		return domain.OrderRequest{
			CustomerEmail: "a@b.com",
			Items:         []domain.LineItem{{SKU: "X", Quantity: 1, UnitPrice: mustDecimal(t, "40")}},
			CouponCode:    code,
		}
	}

	res, err := svc.pipeline.Process(context.Background(), order("QUARTER"))
	require.NoError(t, err)
	require.Equal(t, "30.00", res.Total.StringFixed(2))

	res, err = svc.pipeline.Process(context.Background(), order("SAVE10"))
	require.NoError(t, err)
	require.Equal(t, "40.00", res.Total.StringFixed(2), "SAVE10 is not merged back in")
}

func TestBuildService_AuditReaderOnlyWithDatabase(t *testing.T) {
	c := config.Defaults()
	c.DB.Path = ""
	svc, err := buildService(context.Background(), c)
	require.NoError(t, err)
	require.Nil(t, svc.audit)
	require.NoError(t, svc.Close())

	c.DB.Path = filepath.Join(t.TempDir(), "orders.db")
	svc, err = buildService(context.Background(), c)
	require.NoError(t, err)
	defer svc.Close()
	require.NotNil(t, svc.audit)
}

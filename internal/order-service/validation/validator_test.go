package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

func item(sku string, qty int, price string) domain.LineItem {
	return domain.LineItem{SKU: sku, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func TestValidate_Accepts(t *testing.T) {
	req := domain.OrderRequest{
		CustomerEmail: "a@b.com",
		Items:         []domain.LineItem{item("X", 2, "5"), item("Y", 1, "0")},
		CouponCode:    "SAVE10",
	}

	v, err := Validate(req)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", v.Request().CustomerEmail)
	require.Len(t, v.Request().Items, 2)
}

func TestValidate_MissingRecipient(t *testing.T) {
	for _, email := range []string{"", "   "} {
		_, err := Validate(domain.OrderRequest{
			CustomerEmail: email,
			Items:         []domain.LineItem{item("X", 1, "1")},
		})
		require.ErrorIs(t, err, domain.ErrMissingRecipient)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, domain.KindMissingRecipient, verr.Kind)
	}
}

func TestValidate_RecipientCheckedBeforeItems(t *testing.T) {
	_, err := Validate(domain.OrderRequest{})
	require.ErrorIs(t, err, domain.ErrMissingRecipient)
}

func TestValidate_EmptyOrder(t *testing.T) {
	_, err := Validate(domain.OrderRequest{CustomerEmail: "a@b.com"})
	require.ErrorIs(t, err, domain.ErrEmptyOrder)
	require.NotErrorIs(t, err, domain.ErrInvalidItem)
}

func TestValidate_InvalidItem(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.LineItem
		index int
		field string
	}{
		{"empty sku", []domain.LineItem{item("", 1, "1")}, 0, "sku"},
		{"zero quantity", []domain.LineItem{item("X", 0, "1")}, 0, "quantity"},
		{"negative quantity", []domain.LineItem{item("X", -3, "1")}, 0, "quantity"},
		{"negative price", []domain.LineItem{item("X", 1, "-0.01")}, 0, "unit_price"},
		{"second item", []domain.LineItem{item("X", 1, "1"), item("Y", 0, "1")}, 1, "quantity"},
		{"first violation wins", []domain.LineItem{item("X", 1, "1"), item("", 1, "1"), item("Z", 0, "1")}, 1, "sku"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(domain.OrderRequest{CustomerEmail: "a@b.com", Items: tt.items})
			require.ErrorIs(t, err, domain.ErrInvalidItem)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tt.index, verr.Index)
			require.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidate_StrictEmail(t *testing.T) {
	req := domain.OrderRequest{
		CustomerEmail: "not-an-address",
		Items:         []domain.LineItem{item("X", 1, "1")},
	}

	_, err := Validate(req)
	require.NoError(t, err, "default rules only require a non-empty recipient")

	_, err = Validator{StrictEmail: true}.Validate(req)
	require.ErrorIs(t, err, domain.ErrInvalidRecipient)
	require.NotErrorIs(t, err, domain.ErrMissingRecipient)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, domain.KindInvalidRecipient, verr.Kind)
	require.NotEmpty(t, verr.Reason)
	require.Contains(t, err.Error(), "malformed customer email")

	_, err = Validator{StrictEmail: true}.Validate(domain.OrderRequest{Items: req.Items})
	require.ErrorIs(t, err, domain.ErrMissingRecipient, "an empty address is still missing, not malformed")
}

func TestValidate_CopiesItems(t *testing.T) {
	items := []domain.LineItem{item("X", 1, "1")}
	v, err := Validate(domain.OrderRequest{CustomerEmail: "a@b.com", Items: items})
	require.NoError(t, err)

	items[0].SKU = "mutated"
	require.Equal(t, "X", v.Request().Items[0].SKU)
}

// Any item with a non-positive quantity is reported with its own index when
// every earlier item is valid.
func TestValidate_Property_ReportsFirstBadIndex(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		bad := rapid.IntRange(0, n-1).Draw(t, "bad")

		items := make([]domain.LineItem, n)
		for i := range items {
			items[i] = item("SKU", rapid.IntRange(1, 50).Draw(t, "qty"), "1.5")
		}
		items[bad].Quantity = -rapid.IntRange(0, 5).Draw(t, "negQty")

		_, err := Validate(domain.OrderRequest{CustomerEmail: "a@b.com", Items: items})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if verr.Index != bad {
			t.Fatalf("expected index %d, got %d", bad, verr.Index)
		}
	})
}

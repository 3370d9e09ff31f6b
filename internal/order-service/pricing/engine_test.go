package pricing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/validation"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validated(t *testing.T, coupon string, items ...domain.LineItem) domain.ValidatedOrder {
	t.Helper()
	v, err := validation.Validate(domain.OrderRequest{
		CustomerEmail: "a@b.com",
		Items:         items,
		CouponCode:    coupon,
	})
	require.NoError(t, err)
	return v
}

func TestPrice_Save10(t *testing.T) {
	engine := NewEngine(nil)
	order := validated(t, "SAVE10", domain.LineItem{SKU: "X", Quantity: 2, UnitPrice: dec("5")})

	got := engine.Price(order)

	want := struct{ Subtotal, Discount, Total decimal.Decimal }{dec("10"), dec("1"), dec("9")}
	have := struct{ Subtotal, Discount, Total decimal.Decimal }{got.Subtotal, got.Discount, got.Total}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("priced amounts mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "SAVE10", got.CouponCode)
	require.Equal(t, "a@b.com", got.CustomerEmail)
}

func TestPrice_UnknownAndAbsentCoupon(t *testing.T) {
	engine := NewEngine(nil)
	for _, code := range []string{"", "save10", "BOGUS"} {
		got := engine.Price(validated(t, code, domain.LineItem{SKU: "X", Quantity: 3, UnitPrice: dec("2.50")}))
		require.True(t, got.Discount.IsZero(), "code %q", code)
		require.True(t, got.Total.Equal(dec("7.50")), "code %q: total %s", code, got.Total)
	}
}

func TestPrice_DecimalSumIsExact(t *testing.T) {
	engine := NewEngine(nil)
	got := engine.Price(validated(t, "",
		domain.LineItem{SKU: "A", Quantity: 1, UnitPrice: dec("0.1")},
		domain.LineItem{SKU: "B", Quantity: 1, UnitPrice: dec("0.2")},
	))
	require.True(t, got.Subtotal.Equal(dec("0.3")), "subtotal %s", got.Subtotal)
}

func TestPrice_TotalClampedAtZero(t *testing.T) {
	coupons := DefaultCoupons()
	require.NoError(t, coupons.Register("HUGE", FixedOff(dec("1000"))))
	engine := NewEngine(coupons)

	got := engine.Price(validated(t, "HUGE", domain.LineItem{SKU: "X", Quantity: 1, UnitPrice: dec("10")}))
	require.True(t, got.Discount.Equal(dec("1000")))
	require.True(t, got.Total.IsZero())
}

func TestPrice_ZeroPricedItems(t *testing.T) {
	got := NewEngine(nil).Price(validated(t, "SAVE10", domain.LineItem{SKU: "FREE", Quantity: 4, UnitPrice: decimal.Zero}))
	require.True(t, got.Subtotal.IsZero())
	require.True(t, got.Total.IsZero())
}

func TestCouponTable_ExtendWithoutTouchingEngine(t *testing.T) {
	coupons := DefaultCoupons()
	engine := NewEngine(coupons)
	order := validated(t, "HALF", domain.LineItem{SKU: "X", Quantity: 1, UnitPrice: dec("40")})

	require.True(t, engine.Price(order).Discount.IsZero())

	require.NoError(t, coupons.Register("HALF", PercentOff(dec("50"))))
	require.True(t, engine.Price(order).Total.Equal(dec("20")))
}

func TestCouponTable_Register(t *testing.T) {
	coupons := DefaultCoupons()

	err := coupons.Register("SAVE10", PercentOff(dec("90")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")

	require.Error(t, coupons.Register("", PercentOff(dec("5"))))
	require.Error(t, coupons.Register("NIL", nil))

	fn, ok := coupons.Lookup("SAVE10")
	require.True(t, ok)
	require.True(t, fn(dec("200")).Equal(dec("20")))
}

// The engine sums line items left to right; the result must equal a
// reference decimal computation.
func TestPrice_Property_MatchesReferenceSum(t *testing.T) {
	engine := NewEngine(nil)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 15).Draw(rt, "n")
		items := make([]domain.LineItem, n)
		ref := decimal.Zero
		for i := range items {
			qty := rapid.IntRange(1, 1000).Draw(rt, "qty")
			cents := rapid.Int64Range(0, 1_000_000).Draw(rt, "cents")
			price := decimal.New(cents, -2)
			items[i] = domain.LineItem{SKU: "S", Quantity: qty, UnitPrice: price}
			ref = ref.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}
		coupon := rapid.SampledFrom([]string{"", "SAVE10", "NOPE"}).Draw(rt, "coupon")

		v, err := validation.Validate(domain.OrderRequest{CustomerEmail: "a@b.com", Items: items, CouponCode: coupon})
		if err != nil {
			rt.Fatalf("validate: %v", err)
		}
		got := engine.Price(v)

		if !got.Subtotal.Equal(ref) {
			rt.Fatalf("subtotal %s, want %s", got.Subtotal, ref)
		}
		if got.Total.IsNegative() {
			rt.Fatalf("negative total %s", got.Total)
		}
		if !got.Total.Equal(decimal.Max(decimal.Zero, got.Subtotal.Sub(got.Discount))) {
			rt.Fatalf("total %s does not equal subtotal - discount", got.Total)
		}
	})
}

func TestPercentCoupons(t *testing.T) {
	coupons, err := PercentCoupons(map[string]string{"SAVE10": "10", "QUARTER": "25"})
	require.NoError(t, err)

	got := NewEngine(coupons).Price(validated(t, "QUARTER", domain.LineItem{SKU: "X", Quantity: 1, UnitPrice: dec("40")}))
	require.True(t, got.Total.Equal(dec("30")), "total %s", got.Total)

	_, err = PercentCoupons(map[string]string{"BAD": "ten"})
	require.Error(t, err)

	_, err = PercentCoupons(map[string]string{"GREEDY": "150"})
	require.ErrorContains(t, err, "out of range")
}

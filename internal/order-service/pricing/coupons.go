package pricing

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// DiscountFunc maps a subtotal to the discount a coupon grants on it.
type DiscountFunc func(subtotal decimal.Decimal) decimal.Decimal

// PercentOff discounts pct percent of the subtotal.
func PercentOff(pct decimal.Decimal) DiscountFunc {
	rate := pct.Div(decimal.NewFromInt(100))
	return func(subtotal decimal.Decimal) decimal.Decimal {
		return subtotal.Mul(rate)
	}
}

// FixedOff discounts a flat amount. The engine clamps the total at zero.
func FixedOff(amount decimal.Decimal) DiscountFunc {
	return func(decimal.Decimal) decimal.Decimal {
		return amount
	}
}

// CouponTable maps coupon codes to discount functions. Codes are matched
// exactly. It is safe for concurrent use.
type CouponTable struct {
	mu    sync.RWMutex
	rules map[string]DiscountFunc
}

func NewCouponTable() *CouponTable {
	return &CouponTable{rules: make(map[string]DiscountFunc)}
}

// DefaultCoupons returns a table holding SAVE10, 10% off the subtotal.
func DefaultCoupons() *CouponTable {
	t := NewCouponTable()
	_ = t.Register("SAVE10", PercentOff(decimal.NewFromInt(10)))
	return t
}

// Register adds a coupon. Existing codes are not replaced.
func (t *CouponTable) Register(code string, fn DiscountFunc) error {
	if code == "" {
		return fmt.Errorf("pricing: coupon code cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("pricing: coupon %q has no discount function", code)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rules[code]; exists {
		return fmt.Errorf("pricing: coupon %q already registered", code)
	}
	t.rules[code] = fn
	return nil
}

func (t *CouponTable) Lookup(code string) (DiscountFunc, bool) {
	if code == "" {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	fn, ok := t.rules[code]
	return fn, ok
}

// PercentCoupons builds a table from code → percent pairs, such as those
// read from configuration. Percentages must be decimal strings in [0, 100].
func PercentCoupons(percentages map[string]string) (*CouponTable, error) {
	t := NewCouponTable()
	for code, raw := range percentages {
		pct, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("pricing: coupon %q: invalid percentage %q: %w", code, raw, err)
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("pricing: coupon %q: percentage %s out of range", code, pct)
		}
		if err := t.Register(code, PercentOff(pct)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Package pricing turns a validated order into a priced one.
//
// Amounts use exact decimal arithmetic so the subtotal of a given list of
// items is the same on every platform. Items are summed in order.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

type Engine struct {
	coupons *CouponTable
}

// NewEngine builds an engine over the given coupon table. A nil table means
// DefaultCoupons.
func NewEngine(coupons *CouponTable) *Engine {
	if coupons == nil {
		coupons = DefaultCoupons()
	}
	return &Engine{coupons: coupons}
}

// Price never fails for a validated order.
func (e *Engine) Price(order domain.ValidatedOrder) domain.PricedOrder {
	req := order.Request()

	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	discount := decimal.Zero
	if fn, ok := e.coupons.Lookup(req.CouponCode); ok {
		discount = fn(subtotal)
	}

	total := decimal.Max(decimal.Zero, subtotal.Sub(discount))

	return domain.PricedOrder{
		OrderRequest: req,
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        total,
	}
}

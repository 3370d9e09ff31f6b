// Package domain holds the order types that flow through the fulfillment
// pipeline: request -> validated -> priced -> persisted.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderID string

func (id OrderID) String() string { return string(id) }

type OrderStatus string

const (
	StatusPaid OrderStatus = "PAID"
)

// LineItem is a single SKU line of an order.
type LineItem struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderRequest is the raw input of the pipeline. An empty CouponCode means
// no coupon was supplied.
type OrderRequest struct {
	CustomerEmail string     `json:"customer_email"`
	Items         []LineItem `json:"items"`
	CouponCode    string     `json:"coupon_code,omitempty"`
}

// ValidatedOrder is an OrderRequest that passed validation. Obtain one from
// validation.Validate; the zero value holds an empty request.
type ValidatedOrder struct {
	request OrderRequest
}

// NewValidatedOrder wraps req without checking it. It exists for the
// validation package; other callers take responsibility for req holding
// every order rule. Items are copied so later changes to the caller's slice
// are not observed.
func NewValidatedOrder(req OrderRequest) ValidatedOrder {
	items := make([]LineItem, len(req.Items))
	copy(items, req.Items)
	req.Items = items
	return ValidatedOrder{request: req}
}

func (v ValidatedOrder) Request() OrderRequest { return v.request }

// PricedOrder is a validated request plus the computed amounts.
type PricedOrder struct {
	OrderRequest
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// PersistedOrder is a PricedOrder after the store committed it. ID is the
// only field assigned outside the pipeline.
type PersistedOrder struct {
	PricedOrder
	ID        OrderID     `json:"id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

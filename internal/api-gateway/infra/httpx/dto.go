package httpx

import "github.com/shopspring/decimal"

// Amounts are accepted as JSON strings or numbers and always returned as
// strings with two decimal places.

type CreateOrderRequest struct {
	CustomerEmail string               `json:"customer_email"`
	Items         []CreateOrderItemDTO `json:"items"`
	CouponCode    string               `json:"coupon_code,omitempty"`
}

type CreateOrderItemDTO struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Total   string `json:"total"`
	Channel string `json:"channel"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	Subtotal      string              `json:"subtotal"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type OrderItemResponse struct {
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type ChannelsResponse struct {
	Default  string   `json:"default"`
	Channels []string `json:"channels"`
}

type AuditRecordResponse struct {
	Event   string  `json:"event"`
	Stage   string  `json:"stage"`
	OrderID string  `json:"order_id,omitempty"`
	Total   *string `json:"total,omitempty"`
	Error   string  `json:"error,omitempty"`
	TraceID string  `json:"trace_id,omitempty"`
	SpanID  string  `json:"span_id,omitempty"`
	At      string  `json:"at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Index   *int   `json:"index,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

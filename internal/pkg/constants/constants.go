// Package constants holds the header names and context keys shared by the
// HTTP layer and the components it calls.
package constants

import "context"

// contextKey is unexported so keys cannot collide with other packages'.
type contextKey string

const (
	HeaderXRequestId           = "x-request-id"
	HeaderXIdempotencyKey      = "x-idempotency-key"
	HeaderXNotificationChannel = "x-notification-channel"

	ContextKeyRequestID      contextKey = HeaderXRequestId
	ContextKeyIdempotencyKey contextKey = HeaderXIdempotencyKey
)

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// IdempotencyKey returns the idempotency key stored in ctx, or "".
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeyIdempotencyKey).(string)
	return key
}

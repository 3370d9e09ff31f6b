package middlewares

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/constants"
)

const tracerName = "github.com/jcmexdev/ecommerce-orders/internal/api-gateway"

// AttachTracingMetadata continues any incoming W3C trace, opens a server
// span, and stores the request id and idempotency key in the context.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		requestId := middleware.GetReqID(ctx)
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", requestId),
			),
		)
		defer span.End()

		ctx = context.WithValue(ctx, constants.ContextKeyRequestID, requestId)
		ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package auditlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars), empty without
	// an active span.
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty
// when the context carries no valid span, e.g. in unit tests.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// Stamp fills the trace ids and timestamp of rec from ctx when unset.
func Stamp(ctx context.Context, rec *Record) {
	if rec.TraceID == "" && rec.SpanID == "" {
		ti := ExtractTraceInfo(ctx)
		rec.TraceID, rec.SpanID = ti.TraceID, ti.SpanID
	}
	if rec.At.IsZero() {
		rec.At = time.Now().UTC()
	}
}

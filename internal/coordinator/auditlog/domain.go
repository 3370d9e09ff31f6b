// Package auditlog records the outcome of every order pipeline run.
//
// Each run appends one record: ORDER_PROCESSED when the order was persisted
// and the confirmation delivered, ORDER_FAILED otherwise. A failed record
// may still carry an order id when the failure happened after the order
// was committed (for example a notification that could not be delivered).
//
// Records carry the trace and span ids of the run so a row can be joined
// with its distributed trace.
package auditlog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the kind of audit record.
type Event string

const (
	EventOrderProcessed Event = "ORDER_PROCESSED"
	EventOrderFailed    Event = "ORDER_FAILED"
)

// Record is a single row of the audit trail.
type Record struct {
	Event Event

	// Stage is the pipeline stage that produced the record.
	Stage string

	// OrderID is empty when the order never reached the store.
	OrderID string

	// Total is nil when the order was never priced.
	Total *decimal.Decimal

	// Error is the failure description for ORDER_FAILED records.
	Error string

	TraceID string
	SpanID  string

	At time.Time
}

// Package sqlite provides a SQLite-backed implementation of auditlog.Repository.
//
// WAL mode is enabled on Open so readers never block the pipeline while it
// appends records.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"

	// Pure-Go SQLite driver, no CGO needed.
	_ "modernc.org/sqlite"
)

var _ auditlog.Repository = (*Repository)(nil)

// The table is append-only: one row per pipeline outcome.
const schema = `
CREATE TABLE IF NOT EXISTS order_audit_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    event       TEXT NOT NULL,
    stage       TEXT NOT NULL DEFAULT '',

    -- Empty when the order never reached the store.
    order_id    TEXT NOT NULL DEFAULT '',

    -- Decimal string; NULL when the order was never priced.
    total       TEXT,

    error       TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',

    -- RFC3339 with nanoseconds, UTC.
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_audit_log_order_id ON order_audit_log(order_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_order_audit_log_trace_id ON order_audit_log(trace_id);
`

type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/audit.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// Single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply audit schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends rec. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, rec *auditlog.Record) error {
	const q = `
		INSERT INTO order_audit_log
			(event, stage, order_id, total, error, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	var total any
	if rec.Total != nil {
		total = rec.Total.String()
	}

	_, err := r.db.ExecContext(ctx, q,
		string(rec.Event),
		rec.Stage,
		rec.OrderID,
		total,
		rec.Error,
		rec.TraceID,
		rec.SpanID,
		formatTime(rec.At),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save audit record for %q: %w", rec.OrderID, err)
	}
	return nil
}

// GetLatest returns the most recent record for orderID.
func (r *Repository) GetLatest(ctx context.Context, orderID string) (*auditlog.Record, error) {
	const q = `
		SELECT event, stage, order_id, total, error, trace_id, span_id, recorded_at
		FROM   order_audit_log
		WHERE  order_id = ?
		ORDER  BY recorded_at DESC, id DESC
		LIMIT  1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: order %q: %w", orderID, auditlog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", orderID, err)
	}
	return rec, nil
}

// ListByTrace returns every record written under traceID, oldest first.
func (r *Repository) ListByTrace(ctx context.Context, traceID string) ([]*auditlog.Record, error) {
	const q = `
		SELECT event, stage, order_id, total, error, trace_id, span_id, recorded_at
		FROM   order_audit_log
		WHERE  trace_id = ?
		ORDER  BY recorded_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, traceID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list by trace %q: %w", traceID, err)
	}
	defer rows.Close()

	var out []*auditlog.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan audit record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*auditlog.Record, error) {
	var rec auditlog.Record
	var event, recordedAt string
	var total sql.NullString

	if err := s.Scan(&event, &rec.Stage, &rec.OrderID, &total, &rec.Error, &rec.TraceID, &rec.SpanID, &recordedAt); err != nil {
		return nil, err
	}
	rec.Event = auditlog.Event(event)

	if total.Valid {
		d, err := decimal.NewFromString(total.String)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse total %q: %w", total.String, err)
		}
		rec.Total = &d
	}

	at, err := parseRFC3339(recordedAt)
	if err != nil {
		return nil, err
	}
	rec.At = at
	return &rec, nil
}

// Package sqlite provides a SQLite-backed domain.OrderRepository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"

	_ "modernc.org/sqlite"
)

var _ domain.OrderRepository = (*Repository)(nil)

// Amounts are stored as decimal strings to keep them exact.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id             TEXT PRIMARY KEY,
    customer_email TEXT NOT NULL,
    coupon_code    TEXT NOT NULL DEFAULT '',
    subtotal       TEXT NOT NULL,
    discount       TEXT NOT NULL,
    total          TEXT NOT NULL,
    status         TEXT NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    order_id   TEXT    NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    sku        TEXT    NOT NULL,
    quantity   INTEGER NOT NULL,
    unit_price TEXT    NOT NULL,
    PRIMARY KEY (order_id, position)
);
`

const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply order schema: %w", err)
	}
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert writes the order and its items in one transaction. Any failure is
// returned as *domain.PersistenceError and leaves nothing behind.
func (r *Repository) Insert(ctx context.Context, order domain.PricedOrder) (domain.PersistedOrder, error) {
	saved := domain.PersistedOrder{
		PricedOrder: order,
		ID:          domain.OrderID(uuid.NewString()),
		Status:      domain.StatusPaid,
		CreatedAt:   r.now(),
	}

	if err := r.insert(ctx, saved); err != nil {
		return domain.PersistedOrder{}, &domain.PersistenceError{Cause: err}
	}
	return saved, nil
}

func (r *Repository) insert(ctx context.Context, o domain.PersistedOrder) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qOrder = `
		INSERT INTO orders (id, customer_email, coupon_code, subtotal, discount, total, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, qOrder,
		string(o.ID),
		o.CustomerEmail,
		o.CouponCode,
		o.Subtotal.String(),
		o.Discount.String(),
		o.Total.String(),
		string(o.Status),
		o.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %s: %w", o.ID, err)
	}

	const qItem = `
		INSERT INTO order_items (order_id, position, sku, quantity, unit_price)
		VALUES (?, ?, ?, ?, ?)`
	for i, item := range o.Items {
		if _, err = tx.ExecContext(ctx, qItem, string(o.ID), i, item.SKU, item.Quantity, item.UnitPrice.String()); err != nil {
			return fmt.Errorf("sqlite: insert item %d of %s: %w", i, o.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit order %s: %w", o.ID, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id domain.OrderID) (domain.PersistedOrder, error) {
	const q = `
		SELECT customer_email, coupon_code, subtotal, discount, total, status, created_at
		FROM   orders
		WHERE  id = ?`

	var o domain.PersistedOrder
	var subtotal, discount, total, status, createdAt string
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(
		&o.CustomerEmail, &o.CouponCode, &subtotal, &discount, &total, &status, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: order %s: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: get order %s: %w", id, err)
	}

	o.ID = id
	o.Status = domain.OrderStatus(status)
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: parse subtotal: %w", err)
	}
	if o.Discount, err = decimal.NewFromString(discount); err != nil {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: parse discount: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: parse total: %w", err)
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.PersistedOrder{}, fmt.Errorf("sqlite: parse created_at %q: %w", createdAt, err)
	}

	o.Items, err = r.items(ctx, id)
	if err != nil {
		return domain.PersistedOrder{}, err
	}
	return o, nil
}

func (r *Repository) items(ctx context.Context, id domain.OrderID) ([]domain.LineItem, error) {
	const q = `
		SELECT sku, quantity, unit_price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY position`

	rows, err := r.db.QueryContext(ctx, q, string(id))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items of %s: %w", id, err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		var price string
		if err := rows.Scan(&item.SKU, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("sqlite: scan item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: parse unit price %q: %w", price, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

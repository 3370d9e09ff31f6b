package ports

import (
	"context"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

// OrderProcessor runs an order through the fulfillment pipeline.
type OrderProcessor interface {
	ProcessOn(ctx context.Context, channel string, req domain.OrderRequest) (coordinator.Result, error)
	Channel() string
}

type OrderReader interface {
	Get(ctx context.Context, id domain.OrderID) (domain.PersistedOrder, error)
}

type ChannelLister interface {
	Channels() []string
}

// AuditReader is the read side of the audit trail. GetLatest returns an
// error matching auditlog.ErrNotFound for an order without records.
type AuditReader interface {
	GetLatest(ctx context.Context, orderID string) (*auditlog.Record, error)
	ListByTrace(ctx context.Context, traceID string) ([]*auditlog.Record, error)
}

package coordinator

import (
	"context"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
	"github.com/jcmexdev/ecommerce-orders/internal/notification"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

// OrderStore commits priced orders. Insert must assign a unique ID and be
// atomic for a single order; the pipeline calls it at most once per run.
type OrderStore interface {
	Insert(ctx context.Context, order domain.PricedOrder) (domain.PersistedOrder, error)
}

// Dispatcher delivers a notification on its named channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notification.Request, t notification.Transports) error
}

// AuditLogger records pipeline outcomes. It has no error return: a logger
// that panics is a configuration fault and is not recovered.
type AuditLogger interface {
	Info(ctx context.Context, rec auditlog.Record)
	Error(ctx context.Context, rec auditlog.Record)
}

type Validator interface {
	Validate(req domain.OrderRequest) (domain.ValidatedOrder, error)
}

type PricingEngine interface {
	Price(order domain.ValidatedOrder) domain.PricedOrder
}

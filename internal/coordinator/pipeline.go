// Package coordinator runs an order through validation, pricing,
// persistence and confirmation, and records the outcome.
//
// Validation and persistence failures are hard: the run stops and the error
// is returned. A confirmation that cannot be delivered is soft by default:
// the order stays committed, the failure is audited, and the caller gets the
// committed result.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
	"github.com/jcmexdev/ecommerce-orders/internal/notification"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/pricing"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/validation"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/metrics"
)

const (
	DefaultChannel      = "EMAIL"
	ConfirmationSubject = "Your order confirmation"

	tracerName = "github.com/jcmexdev/ecommerce-orders/internal/coordinator"
)

// Result is what a caller learns about a committed order.
type Result struct {
	OrderID domain.OrderID
	Total   decimal.Decimal
}

// Pipeline processes one order per call. It holds no per-order state and is
// safe for concurrent use.
type Pipeline struct {
	validator  Validator
	pricing    PricingEngine
	store      OrderStore
	dispatcher Dispatcher
	transports notification.Transports
	audit      AuditLogger
	channel    string
	strict     bool
	tracer     trace.Tracer
}

type Option func(*Pipeline)

func WithValidator(v Validator) Option { return func(p *Pipeline) { p.validator = v } }

func WithPricing(e PricingEngine) Option { return func(p *Pipeline) { p.pricing = e } }

func WithTransports(t notification.Transports) Option {
	return func(p *Pipeline) { p.transports = t }
}

// WithChannel sets the channel confirmations are sent on.
func WithChannel(name string) Option { return func(p *Pipeline) { p.channel = name } }

// WithStrictNotification makes a failed confirmation a hard error. The order
// is still committed and the Result is still returned with the error.
func WithStrictNotification() Option { return func(p *Pipeline) { p.strict = true } }

func WithTracer(t trace.Tracer) Option { return func(p *Pipeline) { p.tracer = t } }

// NewPipeline wires a pipeline over the three external collaborators.
func NewPipeline(store OrderStore, dispatcher Dispatcher, audit AuditLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		validator:  validation.Validator{},
		pricing:    pricing.NewEngine(nil),
		store:      store,
		dispatcher: dispatcher,
		audit:      audit,
		channel:    DefaultChannel,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the default confirmation channel.
func (p *Pipeline) Channel() string { return p.channel }

// Process runs req through the pipeline using the default channel.
func (p *Pipeline) Process(ctx context.Context, req domain.OrderRequest) (Result, error) {
	return p.ProcessOn(ctx, p.channel, req)
}

// ProcessOn is Process with the confirmation sent on channel.
func (p *Pipeline) ProcessOn(ctx context.Context, channel string, req domain.OrderRequest) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "order.process", trace.WithAttributes(
		attribute.String("order.channel", channel),
		attribute.Int("order.items", len(req.Items)),
	))
	defer span.End()

	var validated domain.ValidatedOrder
	err := p.run(ctx, StageValidate, func(context.Context) error {
		var err error
		validated, err = p.validator.Validate(req)
		return err
	})
	if err != nil {
		return Result{}, p.fail(ctx, span, StageValidate, err, "", nil)
	}

	var priced domain.PricedOrder
	err = p.run(ctx, StagePrice, func(context.Context) error {
		priced = p.pricing.Price(validated)
		return nil
	})
	if err != nil {
		return Result{}, p.fail(ctx, span, StagePrice, err, "", nil)
	}

	var saved domain.PersistedOrder
	err = p.run(ctx, StagePersist, func(ctx context.Context) error {
		var err error
		saved, err = p.store.Insert(ctx, priced)
		if err != nil {
			var perr *domain.PersistenceError
			if !errors.As(err, &perr) {
				err = &domain.PersistenceError{Cause: err}
			}
		}
		return err
	})
	if err != nil {
		return Result{}, p.fail(ctx, span, StagePersist, err, "", &priced.Total)
	}

	// The order is committed from here on; nothing below undoes it.
	result := Result{OrderID: saved.ID, Total: saved.Total}
	span.SetAttributes(attribute.String("order.id", saved.ID.String()))

	err = p.run(ctx, StageNotify, func(ctx context.Context) error {
		return p.dispatcher.Dispatch(ctx, confirmation(channel, saved), p.transports)
	})
	metrics.RecordNotification(channelLabel(channel, err), err == nil)
	if err != nil {
		perr := p.fail(ctx, span, StageNotify, err, saved.ID, &saved.Total)
		if p.strict {
			return result, perr
		}
		return result, nil
	}

	p.audit.Info(ctx, auditlog.Record{
		Event:   auditlog.EventOrderProcessed,
		Stage:   string(StageAudit),
		OrderID: saved.ID.String(),
		Total:   &saved.Total,
	})
	metrics.RecordOrderProcessed()
	return result, nil
}

// run executes one stage in its own span. A panic inside fn is returned as
// an error so it is audited like any other stage failure.
func (p *Pipeline) run(ctx context.Context, stage Stage, fn func(context.Context) error) (err error) {
	ctx, span := p.tracer.Start(ctx, "order."+string(stage))
	start := time.Now()
	defer func() {
		metrics.ObserveStage(string(stage), time.Since(start).Seconds())
		span.End()
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	return fn(ctx)
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, stage Stage, err error, orderID domain.OrderID, total *decimal.Decimal) *PipelineError {
	perr := &PipelineError{Stage: stage, Err: err}
	span.RecordError(perr)
	span.SetStatus(codes.Error, perr.Error())

	p.audit.Error(ctx, auditlog.Record{
		Event:   auditlog.EventOrderFailed,
		Stage:   string(stage),
		OrderID: orderID.String(),
		Total:   total,
		Error:   err.Error(),
	})
	metrics.RecordOrderFailed(string(stage))
	return perr
}

// channelLabel keeps caller-chosen channel names that are not registered
// out of metric labels.
func channelLabel(channel string, err error) string {
	var unknown *notification.UnknownChannelError
	if errors.As(err, &unknown) {
		return metrics.UnknownChannel
	}
	return channel
}

func confirmation(channel string, order domain.PersistedOrder) notification.Request {
	return notification.Request{
		Channel:   channel,
		Recipient: order.CustomerEmail,
		Subject:   ConfirmationSubject,
		Message:   fmt.Sprintf("Order %s total: %s", order.ID, order.Total.StringFixed(2)),
	}
}

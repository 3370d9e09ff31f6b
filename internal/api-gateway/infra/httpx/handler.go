package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/jcmexdev/ecommerce-orders/internal/api-gateway/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
	"github.com/jcmexdev/ecommerce-orders/internal/notification"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/constants"
)

const (
	IdempotencyTTL       = 24 * time.Hour
	HeaderIdempotentHit  = "x-idempotent-replay"
	opCreateOrder        = "create_order"
	maxRequestBodyLength = 1 << 20
)

// Handler serves the order API on top of the pipeline.
type Handler struct {
	processor ports.OrderProcessor
	orders    ports.OrderReader
	channels  ports.ChannelLister
	audit     ports.AuditReader // nil disables the audit routes
	cache     cache.Cache       // nil disables idempotent replay

	// inflight holds one pipeline run per idempotency key.
	inflight singleflight.Group
}

// NewHandler wires the HTTP handlers. audit and c may be nil.
func NewHandler(
	p ports.OrderProcessor,
	orders ports.OrderReader,
	channels ports.ChannelLister,
	audit ports.AuditReader,
	c cache.Cache,
) *Handler {
	return &Handler{
		processor: p,
		orders:    orders,
		channels:  channels,
		audit:     audit,
		cache:     c,
	}
}

// CreateOrder runs the request through the pipeline. A repeated
// x-idempotency-key replays the first successful response, and concurrent
// requests with the same key share a single pipeline run.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLength)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}

	channel := strings.TrimSpace(r.Header.Get(constants.HeaderXNotificationChannel))
	if channel == "" {
		channel = h.processor.Channel()
	}

	slog.InfoContext(ctx, "processing order",
		"request_id", constants.RequestID(ctx),
		"items", len(req.Items),
		"channel", channel,
	)

	idempKey := constants.IdempotencyKey(ctx)
	if idempKey == "" || h.cache == nil {
		writeOutcome(w, h.create(ctx, channel, req))
		return
	}

	cacheKey := h.cache.GenerateKey(opCreateOrder, idempKey)
	// The shared run must outlive whichever caller happened to start it.
	runCtx := context.WithoutCancel(ctx)
	v, _, shared := h.inflight.Do(cacheKey, func() (any, error) {
		return h.createOnce(runCtx, channel, req, idempKey, cacheKey), nil
	})
	if shared {
		slog.InfoContext(ctx, "idempotency key already in flight, sharing result", "key", idempKey)
	}
	writeOutcome(w, v.(createOutcome))
}

// createOutcome is a complete POST /orders response.
type createOutcome struct {
	status int
	body   []byte
	replay bool
}

// createOnce replays the cached response for cacheKey or runs the order and
// caches a successful response. Callers serialize it per key.
func (h *Handler) createOnce(ctx context.Context, channel string, req CreateOrderRequest, idempKey, cacheKey string) createOutcome {
	cached, err := h.cache.Get(ctx, cacheKey)
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "key", idempKey, "error", err)
	} else if cached != "" {
		slog.InfoContext(ctx, "replaying idempotent response", "key", idempKey)
		return createOutcome{status: http.StatusCreated, body: []byte(cached), replay: true}
	}

	out := h.create(ctx, channel, req)
	if out.status == http.StatusCreated {
		if err := h.cache.Set(ctx, cacheKey, out.body, IdempotencyTTL); err != nil {
			slog.WarnContext(ctx, "idempotent response not cached", "key", idempKey, "error", err)
		}
	}
	return out
}

func (h *Handler) create(ctx context.Context, channel string, req CreateOrderRequest) createOutcome {
	result, err := h.processor.ProcessOn(ctx, channel, toOrderRequest(req))
	if err != nil {
		status, resp := pipelineError(result, err)
		return encodeOutcome(status, resp)
	}

	return encodeOutcome(http.StatusCreated, CreateOrderResponse{
		ID:      result.OrderID.String(),
		Status:  string(domain.StatusPaid),
		Total:   result.Total.StringFixed(2),
		Channel: channel,
	})
}

func encodeOutcome(status int, v any) createOutcome {
	body, err := json.Marshal(v)
	if err != nil {
		body, _ = json.Marshal(ErrorResponse{Error: "encode_failed", Message: err.Error()})
		status = http.StatusInternalServerError
	}
	return createOutcome{status: status, body: body}
}

func writeOutcome(w http.ResponseWriter, out createOutcome) {
	if out.replay {
		w.Header().Set(HeaderIdempotentHit, "true")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(out.status)
	_, _ = w.Write(append(out.body, '\n'))
}

// GetOrderByID returns a committed order.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "order_id_required"})
		return
	}

	order, err := h.orders.Get(r.Context(), domain.OrderID(orderID))
	if errors.Is(err, domain.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "order_not_found", OrderID: orderID})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "order_lookup_failed", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// GetOrderAudit returns the latest audit record of an order.
func (h *Handler) GetOrderAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponse{Error: "audit_disabled"})
		return
	}
	orderID := chi.URLParam(r, "id")

	rec, err := h.audit.GetLatest(r.Context(), orderID)
	if errors.Is(err, auditlog.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrorResponse{Error: "audit_not_found", OrderID: orderID})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "audit_lookup_failed", Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, mapAuditRecord(rec))
}

// ListTraceAudit returns every audit record written under a trace id.
func (h *Handler) ListTraceAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotImplemented, ErrorResponse{Error: "audit_disabled"})
		return
	}

	recs, err := h.audit.ListByTrace(r.Context(), chi.URLParam(r, "traceID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "audit_lookup_failed", Message: err.Error()})
		return
	}

	out := make([]AuditRecordResponse, len(recs))
	for i, rec := range recs {
		out[i] = mapAuditRecord(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

// ListChannels reports the registered notification channels.
func (h *Handler) ListChannels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ChannelsResponse{
		Default:  h.processor.Channel(),
		Channels: h.channels.Channels(),
	})
}

func pipelineError(result coordinator.Result, err error) (int, ErrorResponse) {
	var perr *coordinator.PipelineError
	if !errors.As(err, &perr) {
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()}
	}

	switch perr.Stage {
	case coordinator.StageValidate:
		resp := ErrorResponse{Error: "validation_failed", Message: perr.Err.Error()}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			resp.Error = string(verr.Kind)
			resp.Field = verr.Field
			if verr.Kind == domain.KindInvalidItem {
				idx := verr.Index
				resp.Index = &idx
			}
		}
		return http.StatusUnprocessableEntity, resp
	case coordinator.StagePersist:
		return http.StatusServiceUnavailable, ErrorResponse{Error: "persistence_failed", Message: perr.Err.Error()}
	case coordinator.StageNotify:
		// Strict notification: the order is committed but the caller is told
		// the confirmation did not go out.
		code := "notification_failed"
		var unknown *notification.UnknownChannelError
		if errors.As(err, &unknown) {
			code = "unknown_channel"
		}
		return http.StatusBadGateway, ErrorResponse{
			Error:   code,
			Message: perr.Err.Error(),
			OrderID: result.OrderID.String(),
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: string(perr.Stage) + "_failed", Message: perr.Err.Error()}
	}
}

func toOrderRequest(req CreateOrderRequest) domain.OrderRequest {
	items := make([]domain.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.LineItem{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return domain.OrderRequest{
		CustomerEmail: req.CustomerEmail,
		Items:         items,
		CouponCode:    req.CouponCode,
	}
}

func mapOrderToResponse(order domain.PersistedOrder) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemResponse{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		}
	}
	return OrderResponse{
		ID:            order.ID.String(),
		CustomerEmail: order.CustomerEmail,
		Status:        string(order.Status),
		CouponCode:    order.CouponCode,
		Subtotal:      order.Subtotal.StringFixed(2),
		Discount:      order.Discount.StringFixed(2),
		Total:         order.Total.StringFixed(2),
		Items:         items,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}
}

func mapAuditRecord(rec *auditlog.Record) AuditRecordResponse {
	resp := AuditRecordResponse{
		Event:   string(rec.Event),
		Stage:   rec.Stage,
		OrderID: rec.OrderID,
		Error:   rec.Error,
		TraceID: rec.TraceID,
		SpanID:  rec.SpanID,
		At:      rec.At.Format(time.RFC3339Nano),
	}
	if rec.Total != nil {
		total := rec.Total.StringFixed(2)
		resp.Total = &total
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

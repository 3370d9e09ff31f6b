package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jcmexdev/ecommerce-orders/internal/api-gateway/core/ports"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator"
	"github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog"
	auditsqlite "github.com/jcmexdev/ecommerce-orders/internal/coordinator/auditlog/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/notification"
	"github.com/jcmexdev/ecommerce-orders/internal/notification/channels"
	"github.com/jcmexdev/ecommerce-orders/internal/notification/transport"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/adapters/sqlite"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/app"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/pricing"
	"github.com/jcmexdev/ecommerce-orders/internal/order-service/validation"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/broker"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-orders/internal/pkg/config"
)

// service is everything a command needs, built from config.
type service struct {
	pipeline *coordinator.Pipeline
	registry *notification.Registry
	orders   domain.OrderRepository
	audit    ports.AuditReader // nil without a database
	cache    cache.Cache

	closers []func() error
}

func (s *service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func buildService(ctx context.Context, cfg config.Config) (_ *service, err error) {
	s := &service{registry: notification.NewRegistry()}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if err := channels.RegisterDefaults(s.registry); err != nil {
		return nil, err
	}

	// Configured coupons replace the defaults.
	coupons, err := pricing.PercentCoupons(cfg.CouponPercentages())
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "coupon table loaded", "codes", couponCodes(cfg))

	var auditRepo auditlog.Repository
	if cfg.DB.Path != "" {
		orders, err := sqlite.Open(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, orders.Close)
		s.orders = orders

		audit, err := auditsqlite.Open(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, audit.Close)
		auditRepo = audit
		s.audit = audit
	} else {
		slog.WarnContext(ctx, "no database configured, orders are kept in memory")
		s.orders = app.NewMemoryStore()
	}

	if cfg.Redis.Addr != "" {
		s.cache = cache.NewRedisCache(cfg.Redis.Addr, "order")
	} else {
		s.cache = cache.NewMemoryCache("order")
	}

	transports, err := buildTransports(ctx, cfg, s)
	if err != nil {
		return nil, err
	}

	opts := []coordinator.Option{
		coordinator.WithValidator(validation.Validator{StrictEmail: cfg.Validation.StrictEmail}),
		coordinator.WithPricing(pricing.NewEngine(coupons)),
		coordinator.WithTransports(transports),
		coordinator.WithChannel(cfg.Notification.Channel),
	}
	if cfg.Notification.Strict {
		opts = append(opts, coordinator.WithStrictNotification())
	}

	s.pipeline = coordinator.NewPipeline(
		s.orders,
		s.registry,
		auditlog.NewLogger(slog.Default().With("component", "audit"), auditRepo),
		opts...,
	)
	return s, nil
}

// buildTransports creates a client for every configured transport. A channel
// whose transport is missing fails at dispatch time.
func buildTransports(ctx context.Context, cfg config.Config, s *service) (notification.Transports, error) {
	var t notification.Transports
	client := &http.Client{Timeout: 10 * time.Second}

	if cfg.SMTP.Host != "" {
		t.Email = transport.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}
	if cfg.SMS.URL != "" {
		t.SMS = transport.NewSMSGateway(cfg.SMS.URL, cfg.SMS.From, client)
	}
	if cfg.Slack.WebhookURL != "" {
		t.Chat = transport.NewSlackWebhook(cfg.Slack.WebhookURL, client)
	}
	if cfg.AMQP.URL != "" {
		pub, err := broker.NewRabbitMQPublisher(ctx, broker.RabbitMQConfig{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		})
		if err != nil {
			return t, fmt.Errorf("events transport: %w", err)
		}
		s.closers = append(s.closers, pub.Close)
		t.Events = pub
	}
	return t, nil
}

func couponCodes(cfg config.Config) []string {
	codes := make([]string, len(cfg.Coupons))
	for i, cp := range cfg.Coupons {
		codes[i] = cp.Code
	}
	return codes
}

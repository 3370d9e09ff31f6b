// Package broker publishes notification events to RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jcmexdev/ecommerce-orders/internal/notification"
)

var _ notification.EventPublisher = (*RabbitMQPublisher)(nil)

const (
	DefaultExchange = "order_exchange"
	dialAttempts    = 5
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// RabbitMQPublisher publishes JSON messages to a durable topic exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishes
	ch       channel
	exchange string
}

// NewRabbitMQPublisher dials the broker with a quadratic backoff and declares
// the exchange.
func NewRabbitMQPublisher(ctx context.Context, cfg RabbitMQConfig) (*RabbitMQPublisher, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		slog.WarnContext(ctx, "failed to connect to rabbitmq, retrying", "in", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("broker: connect after %d attempts: %w", dialAttempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("broker: declare exchange %s: %w", cfg.Exchange, err)
	}
	slog.InfoContext(ctx, "rabbitmq exchange ready", "exchange", cfg.Exchange)

	return &RabbitMQPublisher{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

// Publish marshals payload as JSON and publishes it as a persistent message.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("broker: publish to %s/%s: %w", p.exchange, routingKey, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

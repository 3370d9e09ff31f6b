// Package channels provides the built-in notification channels. Each one is
// a plain notification.Handler registered by name; new channels are added
// the same way from any package.
package channels

import (
	"context"
	"fmt"

	"github.com/jcmexdev/ecommerce-orders/internal/notification"
)

const (
	Email  = "EMAIL"
	SMS    = "SMS"
	Slack  = "SLACK"
	Events = "EVENTS"
)

const defaultSubject = "Notice"

// NotificationRoutingKey is the routing key used by the EVENTS channel.
const NotificationRoutingKey = "order.notification"

// RegisterDefaults registers EMAIL, SMS, SLACK and EVENTS on reg.
func RegisterDefaults(reg *notification.Registry) error {
	builtins := []struct {
		name    string
		handler notification.Handler
	}{
		{Email, SendEmail},
		{SMS, SendSMS},
		{Slack, PostSlack},
		{Events, PublishEvent},
	}
	for _, b := range builtins {
		if err := reg.Register(b.name, b.handler); err != nil {
			return fmt.Errorf("channels: register %s: %w", b.name, err)
		}
	}
	return nil
}

func SendEmail(ctx context.Context, req notification.Request, t notification.Transports) error {
	if t.Email == nil {
		return fmt.Errorf("email: %w", notification.ErrTransportMissing)
	}
	subject := req.Subject
	if subject == "" {
		subject = defaultSubject
	}
	return t.Email.Send(ctx, notification.Email{
		To:      req.Recipient,
		Subject: subject,
		Text:    req.Message,
	})
}

func SendSMS(ctx context.Context, req notification.Request, t notification.Transports) error {
	if t.SMS == nil {
		return fmt.Errorf("sms: %w", notification.ErrTransportMissing)
	}
	return t.SMS.Send(ctx, notification.SMS{To: req.Recipient, Text: req.Message})
}

// PostSlack treats the recipient as the Slack channel to post into.
func PostSlack(ctx context.Context, req notification.Request, t notification.Transports) error {
	if t.Chat == nil {
		return fmt.Errorf("slack: %w", notification.ErrTransportMissing)
	}
	return t.Chat.Post(ctx, notification.ChatMessage{Channel: req.Recipient, Text: req.Message})
}

func PublishEvent(ctx context.Context, req notification.Request, t notification.Transports) error {
	if t.Events == nil {
		return fmt.Errorf("events: %w", notification.ErrTransportMissing)
	}
	return t.Events.Publish(ctx, NotificationRoutingKey, req)
}

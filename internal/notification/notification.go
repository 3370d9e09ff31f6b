// Package notification routes outbound notifications to channel handlers
// registered by name. Channels are added at runtime through Register; the
// registry and its callers never enumerate them.
package notification

import "context"

// Request is a single notification to deliver on Channel.
type Request struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
}

// Handler delivers a request using the supplied transports.
type Handler func(ctx context.Context, req Request, t Transports) error

// Mailer sends an email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SMSSender sends a text message.
type SMSSender interface {
	Send(ctx context.Context, msg SMS) error
}

// ChatPoster posts a message to a chat channel.
type ChatPoster interface {
	Post(ctx context.Context, msg ChatMessage) error
}

// EventPublisher publishes a notification as an event on a message bus.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Email struct {
	To      string
	Subject string
	Text    string
}

type SMS struct {
	To   string
	Text string
}

type ChatMessage struct {
	Channel string
	Text    string
}

// Transports bundles the concrete clients handlers may use. Any field may be
// nil; a handler whose transport is missing fails with ErrTransportMissing.
type Transports struct {
	Email  Mailer
	SMS    SMSSender
	Chat   ChatPoster
	Events EventPublisher
}

package notification

import (
	"errors"
	"fmt"
)

// ErrTransportMissing is returned by handlers whose transport was not
// configured in the Transports bundle.
var ErrTransportMissing = errors.New("transport not configured")

// DuplicateChannelError is returned by Register when the name is taken.
type DuplicateChannelError struct {
	Name string
}

func (e *DuplicateChannelError) Error() string {
	return fmt.Sprintf("notification: duplicate channel %q", e.Name)
}

// UnknownChannelError is returned by Dispatch when no handler is registered
// for the requested channel.
type UnknownChannelError struct {
	Channel string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("notification: unknown channel %q", e.Channel)
}

// DeliveryError wraps a handler failure.
type DeliveryError struct {
	Channel string
	Cause   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification: delivery on %q failed: %v", e.Channel, e.Cause)
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registry maps channel names to handlers. It is safe for concurrent use:
// the lock only guards the map, handlers run without it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds handler to name. A name that is already bound is rejected
// with *DuplicateChannelError; replacing a channel takes an explicit
// Unregister first.
func (r *Registry) Register(name string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("notification: channel name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("notification: channel %q has nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return &DuplicateChannelError{Name: name}
	}
	r.handlers[name] = handler
	return nil
}

// Unregister removes the handler for name and reports whether one existed.
// Dispatches that already looked the handler up still finish with it.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; !exists {
		return false
	}
	delete(r.handlers, name)
	return true
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	return h, ok
}

// Channels returns the registered names in sorted order.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Dispatch delivers req with the handler bound to req.Channel at call time.
func (r *Registry) Dispatch(ctx context.Context, req Request, t Transports) error {
	handler, ok := r.Lookup(req.Channel)
	if !ok {
		return &UnknownChannelError{Channel: req.Channel}
	}

	if err := invoke(ctx, handler, req, t); err != nil {
		slog.WarnContext(ctx, "notification delivery failed", "channel", req.Channel, "error", err)
		return &DeliveryError{Channel: req.Channel, Cause: err}
	}
	return nil
}

// invoke turns a handler panic into an error so one broken plugin cannot
// take the caller down.
func invoke(ctx context.Context, h Handler, req Request, t Transports) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h(ctx, req, t)
}

package domain

import (
	"errors"
	"fmt"
)

// ValidationKind identifies which rule an OrderRequest broke.
type ValidationKind string

const (
	KindMissingRecipient ValidationKind = "MISSING_RECIPIENT"
	KindInvalidRecipient ValidationKind = "INVALID_RECIPIENT"
	KindEmptyOrder       ValidationKind = "EMPTY_ORDER"
	KindInvalidItem      ValidationKind = "INVALID_ITEM"
)

var (
	ErrMissingRecipient = errors.New("missing customer email")
	ErrInvalidRecipient = errors.New("malformed customer email")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrInvalidItem      = errors.New("invalid line item")
)

// ValidationError reports the first rule violation found in an OrderRequest.
// Index is only meaningful for KindInvalidItem.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindInvalidItem:
		return fmt.Sprintf("validation: item %d: %s: %s", e.Index, e.Field, e.Reason)
	default:
		if e.Reason != "" {
			return fmt.Sprintf("validation: %s: %v: %s", e.Field, e.sentinel(), e.Reason)
		}
		return fmt.Sprintf("validation: %s: %v", e.Field, e.sentinel())
	}
}

// Is lets callers match with errors.Is(err, domain.ErrEmptyOrder) and friends.
func (e *ValidationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ValidationError) sentinel() error {
	switch e.Kind {
	case KindMissingRecipient:
		return ErrMissingRecipient
	case KindInvalidRecipient:
		return ErrInvalidRecipient
	case KindEmptyOrder:
		return ErrEmptyOrder
	case KindInvalidItem:
		return ErrInvalidItem
	}
	return nil
}

// PersistenceError wraps any failure of the order store.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %v", e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

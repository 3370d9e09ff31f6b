// Package validation checks incoming orders before they are priced.
package validation

import (
	"net/mail"
	"strings"

	"github.com/jcmexdev/ecommerce-orders/internal/order-service/domain"
)

// Validator applies the order rules. The zero value is ready to use.
type Validator struct {
	// StrictEmail additionally requires CustomerEmail to parse as an
	// RFC 5322 address.
	StrictEmail bool
}

// Validate applies the default rules.
func Validate(req domain.OrderRequest) (domain.ValidatedOrder, error) {
	return Validator{}.Validate(req)
}

// Validate returns the first violation found. Items are scanned left to right.
func (v Validator) Validate(req domain.OrderRequest) (domain.ValidatedOrder, error) {
	email := strings.TrimSpace(req.CustomerEmail)
	if email == "" {
		return domain.ValidatedOrder{}, &domain.ValidationError{
			Kind:  domain.KindMissingRecipient,
			Field: "customer_email",
		}
	}
	if v.StrictEmail {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.ValidatedOrder{}, &domain.ValidationError{
				Kind:   domain.KindInvalidRecipient,
				Field:  "customer_email",
				Reason: err.Error(),
			}
		}
	}

	if len(req.Items) == 0 {
		return domain.ValidatedOrder{}, &domain.ValidationError{
			Kind:  domain.KindEmptyOrder,
			Field: "items",
		}
	}

	for i, item := range req.Items {
		if field, reason, ok := checkItem(item); !ok {
			return domain.ValidatedOrder{}, &domain.ValidationError{
				Kind:   domain.KindInvalidItem,
				Field:  field,
				Index:  i,
				Reason: reason,
			}
		}
	}

	return domain.NewValidatedOrder(req), nil
}

func checkItem(item domain.LineItem) (field, reason string, ok bool) {
	switch {
	case item.SKU == "":
		return "sku", "must not be empty", false
	case item.Quantity <= 0:
		return "quantity", "must be greater than zero", false
	case item.UnitPrice.IsNegative():
		return "unit_price", "must not be negative", false
	}
	return "", "", true
}

package export

import (
	"errors"
	"fmt"
)

// Kind tags the reason a product failed export validation.
type Kind string

// Validation failure kinds. Each is scoped to a single product and never
// fatal to the batch.
const (
	KindMissingAttributes Kind = "missing-attributes"
	KindMissingName       Kind = "missing-name"
	KindMissingPrices     Kind = "missing-prices"
	KindMissingCategories Kind = "missing-categories"
	KindMissingProperty   Kind = "missing-property"
)

// ItemError is a per-product validation failure. Dispatch on Kind, not on
// error identity.
type ItemError struct {
	ProductID string
	Kind      Kind
	Message   string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("product %s: %s", e.ProductID, e.Message)
}

// newItemError builds an ItemError with the standard message for the kind.
func newItemError(productID string, kind Kind) *ItemError {
	var msg string
	switch kind {
	case KindMissingAttributes:
		msg = "Product has no attributes."
	case KindMissingName:
		msg = "Product has no name set."
	case KindMissingPrices:
		msg = "Product has no price for any customer group."
	case KindMissingCategories:
		msg = "Product is not assigned to any category."
	default:
		msg = "Product is missing a required property."
	}
	return &ItemError{ProductID: productID, Kind: kind, Message: msg}
}

// newMissingPropertyError builds a missing-property ItemError naming the
// absent property.
func newMissingPropertyError(productID, property string) *ItemError {
	return &ItemError{
		ProductID: productID,
		Kind:      KindMissingProperty,
		Message:   fmt.Sprintf("Product is missing the required property %q.", property),
	}
}

// AsItemError unwraps err into an *ItemError, if it is one.
func AsItemError(err error) (*ItemError, bool) {
	var itemErr *ItemError
	if errors.As(err, &itemErr) {
		return itemErr, true
	}
	return nil, false
}

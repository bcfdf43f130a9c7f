// Package datastore defines the interface every catalog backend implements.
// Handlers validate carts through this interface so the same pre-payment
// flow runs against OrderDesk, Webflow or Wix.
package datastore

import (
	"context"

	"foxy-webhooks/internal/cart"
	"foxy-webhooks/internal/model"
)

// DataStore abstracts a catalog backend. Implementations fetch canonical
// records for cart items and, where the backend tracks stock, accept
// inventory deductions after a completed transaction.
type DataStore interface {
	// FetchCanonicalItems resolves catalog records for the given cart
	// items. Items with no matching record are simply absent from the
	// result; pairing decides what that means.
	FetchCanonicalItems(ctx context.Context, items []cart.Item) ([]cart.CanonicalItem, error)

	// UpdateInventory pushes new stock levels to the backend.
	// Backends that do not support updates return ErrUnsupported.
	UpdateInventory(ctx context.Context, items []cart.CanonicalItem) error

	// Credentials reports whether the backend has the configuration it
	// needs, returning a model.ErrConfigMissing error when it does not.
	// Checked before any payload processing.
	Credentials() error
}

// Unsupported is returned by backends that cannot perform an operation.
func Unsupported(op string) error {
	return &model.APIError{
		Code:       "UNSUPPORTED",
		Message:    op + " is not supported by this datastore",
		StatusCode: 500,
		Err:        model.ErrUnsupported,
	}
}

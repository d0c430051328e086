// Package store persists the session history and the signed-in identity
// behind a small string-keyed interface with several backends.
package store

import (
	"context"
	"errors"
)

// KV is a durable, string-keyed value store. Set fully replaces the prior
// value; there is no partial merge.
type KV interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases backend resources
	Close() error
}

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("invalid store key")

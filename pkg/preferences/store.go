package preferences

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("preferences: not found")

// Store is the durable key/value storage the preferences are persisted to.
type Store interface {
	// Get returns ErrNotFound if the key was never set.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

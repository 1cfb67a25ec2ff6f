package kv

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is a flat string key-value medium. All fittrack state lives in one.
type Store interface {
	// Get returns ErrKeyNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete does not fail for an absent key.
	Delete(ctx context.Context, key string) error
}

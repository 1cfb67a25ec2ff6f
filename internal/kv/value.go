package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Value is a single JSON encoded T stored under a key, with a fallback used
// when the key is absent or its content does not parse. Like Collection, all
// values over the same store and key share one lock.
type Value[T any] struct {
	store        Store
	key          string
	defaultValue T
	mutex        *sync.Mutex
}

func NewValue[T any](store Store, key string, defaultValue T) *Value[T] {
	return &Value[T]{
		store:        store,
		key:          key,
		defaultValue: defaultValue,
		mutex:        lockFor(store, key),
	}
}

func (v *Value[T]) Get(ctx context.Context) (T, error) {
	value, _, err := v.Lookup(ctx)
	return value, err
}

// Lookup is like Get, but also reports whether a parseable value was stored.
func (v *Value[T]) Lookup(ctx context.Context) (T, bool, error) {
	raw, err := v.store.Get(ctx, v.key)
	if errors.Is(err, ErrKeyNotFound) {
		return v.defaultValue, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("get %s: %w", v.key, err)
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		log.Warnf("stored value of %s is malformed, using default: %s", v.key, err)
		return v.defaultValue, false, nil
	}
	return value, true, nil
}

func (v *Value[T]) Set(ctx context.Context, value T) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.set(ctx, value)
}

func (v *Value[T]) set(ctx context.Context, value T) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", v.key, err)
	}
	if err := v.store.Set(ctx, v.key, string(encoded)); err != nil {
		return fmt.Errorf("set %s: %w", v.key, err)
	}
	return nil
}

// Update applies fn to the current value (or the default) and stores the result.
func (v *Value[T]) Update(ctx context.Context, fn func(current T) (T, error)) (T, error) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	var zero T
	current, err := v.Get(ctx)
	if err != nil {
		return zero, err
	}
	updated, err := fn(current)
	if err != nil {
		return zero, err
	}
	if err := v.set(ctx, updated); err != nil {
		return zero, err
	}
	return updated, nil
}

func (v *Value[T]) Delete(ctx context.Context) error {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	if err := v.store.Delete(ctx, v.key); err != nil {
		return fmt.Errorf("delete %s: %w", v.key, err)
	}
	return nil
}

// Text is a raw, unencoded string under a key (date markers, theme id, data URIs).
type Text struct {
	store Store
	key   string
}

func NewText(store Store, key string) *Text {
	return &Text{
		store: store,
		key:   key,
	}
}

// Get reports false when the key is absent.
func (t *Text) Get(ctx context.Context) (string, bool, error) {
	raw, err := t.store.Get(ctx, t.key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", t.key, err)
	}
	return raw, true, nil
}

func (t *Text) Set(ctx context.Context, value string) error {
	if err := t.store.Set(ctx, t.key, value); err != nil {
		return fmt.Errorf("set %s: %w", t.key, err)
	}
	return nil
}

func (t *Text) Delete(ctx context.Context) error {
	if err := t.store.Delete(ctx, t.key); err != nil {
		return fmt.Errorf("delete %s: %w", t.key, err)
	}
	return nil
}

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Collection is a JSON array of T stored under a single key.
//
// An absent key and a value that is not a valid JSON array both read as an
// empty list. Mutations go through Update, which serialises read-mutate-write
// cycles of the key.
type Collection[T any] struct {
	store Store
	key   string
	mutex *sync.Mutex
}

// NewCollection may be called any number of times for the same store and key;
// all instances share one lock, so their mutations never interleave.
// Mutating the same collection from inside an Update (or Take) callback deadlocks.
func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{
		store: store,
		key:   key,
		mutex: lockFor(store, key),
	}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// List never returns a nil slice.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, ErrKeyNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warnf("stored value of %s is malformed, treating as empty: %s", c.key, err)
		return []T{}, nil
	}
	if items == nil {
		// stored "null"
		items = []T{}
	}
	return items, nil
}

// Save replaces the whole list.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.save(ctx, items)
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, string(encoded)); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

// Update reads the list, applies fn and writes the result back.
// When fn returns an error nothing is written and the error is returned as is.
func (c *Collection[T]) Update(ctx context.Context, fn func(items []T) ([]T, error)) ([]T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := fn(items)
	if err != nil {
		return nil, err
	}

	if err := c.save(ctx, updated); err != nil {
		return nil, err
	}
	if updated == nil {
		updated = []T{}
	}
	return updated, nil
}

// Clear removes the key altogether.
func (c *Collection[T]) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("delete %s: %w", c.key, err)
	}
	return nil
}

// Take hands the current list to fn and removes the key once fn succeeds,
// with no other mutation of the key in between. When fn fails the list is
// left as is and fn's error is returned unwrapped.
func (c *Collection[T]) Take(ctx context.Context, fn func(items []T) error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	if err := fn(items); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("delete %s: %w", c.key, err)
	}
	return nil
}

package wishlist

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
)

type Item struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Image         string    `json:"image"`
	Sport         string    `json:"sport"`
	AddedAt       time.Time `json:"addedAt"`
}

type Store struct {
	items *kv.Collection[Item]
	clock calendar.Clock
}

func NewStore(store kv.Store, clock calendar.Clock) *Store {
	return &Store{
		items: kv.NewCollection[Item](store, kv.KeyWishlist),
		clock: clock,
	}
}

func (s *Store) List(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx)
}

// Add stamps AddedAt on insert. Adding a product already present changes nothing.
func (s *Store) Add(ctx context.Context, item Item) ([]Item, error) {
	return s.items.Update(ctx, func(items []Item) ([]Item, error) {
		if indexOf(items, item.ID) >= 0 {
			return items, nil
		}
		item.AddedAt = s.clock.Now()
		return append(items, item), nil
	})
}

func (s *Store) Remove(ctx context.Context, id string) ([]Item, error) {
	return s.items.Update(ctx, func(items []Item) ([]Item, error) {
		if i := indexOf(items, id); i >= 0 {
			return append(items[:i], items[i+1:]...), nil
		}
		return items, nil
	})
}

func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(items, id) >= 0, nil
}

// Toggle removes the product when present, adds it otherwise.
// The returned flag reports whether it ended up added.
func (s *Store) Toggle(ctx context.Context, item Item) ([]Item, bool, error) {
	added := false
	items, err := s.items.Update(ctx, func(items []Item) ([]Item, error) {
		if i := indexOf(items, item.ID); i >= 0 {
			return append(items[:i], items[i+1:]...), nil
		}
		added = true
		item.AddedAt = s.clock.Now()
		return append(items, item), nil
	})
	if err != nil {
		return nil, false, err
	}
	return items, added, nil
}

func indexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

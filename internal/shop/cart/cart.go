package cart

import (
	"context"
	"errors"

	"github.com/2beens/fittrack/internal/kv"
)

var ErrNegativePrice = errors.New("price can not be negative")

type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Image         string   `json:"image"`
	Sport         string   `json:"sport"`
	Quantity      int      `json:"quantity"`
}

// Store holds at most one line per product id.
type Store struct {
	items *kv.Collection[Item]
}

func NewStore(store kv.Store) *Store {
	return &Store{
		items: kv.NewCollection[Item](store, kv.KeyCart),
	}
}

func (s *Store) List(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx)
}

// Add puts the product in the cart with quantity 1, or bumps the quantity of
// an existing line. The incoming quantity is ignored.
func (s *Store) Add(ctx context.Context, item Item) ([]Item, error) {
	if item.Price < 0 {
		return nil, ErrNegativePrice
	}
	return s.items.Update(ctx, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Quantity++
				return items, nil
			}
		}
		item.Quantity = 1
		return append(items, item), nil
	})
}

// UpdateQuantity sets the quantity of a line; a non positive quantity removes it.
// Unknown ids leave the cart as is.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) ([]Item, error) {
	return s.items.Update(ctx, func(items []Item) ([]Item, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if quantity <= 0 {
				return append(items[:i], items[i+1:]...), nil
			}
			items[i].Quantity = quantity
			break
		}
		return items, nil
	})
}

func (s *Store) Remove(ctx context.Context, id string) ([]Item, error) {
	return s.items.Update(ctx, func(items []Item) ([]Item, error) {
		kept := items[:0]
		for _, item := range items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
}

// TakeAll passes the lines to fn and empties the cart when fn succeeds. No
// other cart mutation lands between the two, so a line is either handed to
// fn or still in the cart afterwards.
func (s *Store) TakeAll(ctx context.Context, fn func(items []Item) error) error {
	return s.items.Take(ctx, fn)
}

// Clear drops the whole cart key.
func (s *Store) Clear(ctx context.Context) error {
	return s.items.Clear(ctx)
}

func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Total(ctx context.Context) (float64, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return 0, err
	}
	return Total(items), nil
}

func (s *Store) ItemCount(ctx context.Context) (int, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return 0, err
	}
	return ItemCount(items), nil
}

// Total is the sum of price * quantity.
func Total(items []Item) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func ItemCount(items []Item) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

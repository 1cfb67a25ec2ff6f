package compare

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/kv"
)

const MaxItems = 4

type Rejection string

const (
	RejectNone             Rejection = ""
	RejectAlreadyPresent   Rejection = "already_present"
	RejectCapacityExceeded Rejection = "capacity_exceeded"
)

// Message is the user facing text of the rejection.
func (r Rejection) Message() string {
	switch r {
	case RejectAlreadyPresent:
		return "Already in comparison"
	case RejectCapacityExceeded:
		return fmt.Sprintf("Maximum %d items allowed", MaxItems)
	default:
		return ""
	}
}

type AddResult struct {
	Items     []string  `json:"items"`
	Added     bool      `json:"added"`
	Rejection Rejection `json:"rejection,omitempty"`
}

// Store is the ordered list of product ids picked for comparison.
type Store struct {
	ids *kv.Collection[string]
}

func NewStore(store kv.Store) *Store {
	return &Store{
		ids: kv.NewCollection[string](store, kv.KeyComparison),
	}
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.ids.List(ctx)
}

// Add never fails on a business rule: rejections are reported in the result
// and the stored list is left untouched.
func (s *Store) Add(ctx context.Context, productID string) (AddResult, error) {
	result := AddResult{}
	items, err := s.ids.Update(ctx, func(ids []string) ([]string, error) {
		if contains(ids, productID) {
			result.Rejection = RejectAlreadyPresent
			return ids, nil
		}
		if len(ids) >= MaxItems {
			result.Rejection = RejectCapacityExceeded
			return ids, nil
		}
		result.Added = true
		return append(ids, productID), nil
	})
	if err != nil {
		return AddResult{}, err
	}
	result.Items = items
	return result, nil
}

func (s *Store) Remove(ctx context.Context, productID string) ([]string, error) {
	return s.ids.Update(ctx, func(ids []string) ([]string, error) {
		kept := ids[:0]
		for _, id := range ids {
			if id != productID {
				kept = append(kept, id)
			}
		}
		return kept, nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.ids.Clear(ctx)
}

func (s *Store) Contains(ctx context.Context, productID string) (bool, error) {
	ids, err := s.ids.List(ctx)
	if err != nil {
		return false, err
	}
	return contains(ids, productID), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	ids, err := s.ids.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/kv"
)

var ErrInvalidSteps = errors.New("steps must be a positive number")

// StepStore keeps today's live step counter and the archived count of yesterday.
type StepStore struct {
	live      *kv.Value[int]
	yesterday *kv.Value[int]
}

func NewStepStore(store kv.Store) *StepStore {
	return &StepStore{
		live:      kv.NewValue(store, kv.KeySteps, 0),
		yesterday: kv.NewValue(store, kv.KeyYesterdaySteps, 0),
	}
}

func (s *StepStore) Today(ctx context.Context) (int, error) {
	return s.live.Get(ctx)
}

func (s *StepStore) Yesterday(ctx context.Context) (int, error) {
	return s.yesterday.Get(ctx)
}

// Add increases the live counter and returns the new total.
func (s *StepStore) Add(ctx context.Context, steps int) (int, error) {
	if steps < 1 {
		return 0, ErrInvalidSteps
	}
	return s.live.Update(ctx, func(current int) (int, error) {
		return current + steps, nil
	})
}

// ArchiveToday moves the live counter into the yesterday slot and zeroes it.
func (s *StepStore) ArchiveToday(ctx context.Context) error {
	today, err := s.live.Get(ctx)
	if err != nil {
		return err
	}
	if err := s.yesterday.Set(ctx, today); err != nil {
		return fmt.Errorf("archive steps: %w", err)
	}
	return s.live.Set(ctx, 0)
}

// ResetToday removes the live counter.
func (s *StepStore) ResetToday(ctx context.Context) error {
	return s.live.Delete(ctx)
}

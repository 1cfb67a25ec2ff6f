package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
)

// CaloriesPerMinute estimates calories when a workout is logged without them.
const CaloriesPerMinute = 8

var ErrInvalidWorkout = errors.New("invalid workout")

type Workout struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Duration  int       `json:"duration"` // minutes
	Calories  int       `json:"calories"`
	Timestamp time.Time `json:"timestamp"`
}

type NewWorkout struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	Calories int    `json:"calories"`
}

func (w NewWorkout) Validate() error {
	switch {
	case strings.TrimSpace(w.Type) == "":
		return fmt.Errorf("%w: workout type is required", ErrInvalidWorkout)
	case w.Duration < 1:
		return fmt.Errorf("%w: duration must be at least 1 minute", ErrInvalidWorkout)
	case w.Calories < 0:
		return fmt.Errorf("%w: calories cannot be negative", ErrInvalidWorkout)
	}
	return nil
}

// WorkoutStore holds the current week's workouts in logging order.
type WorkoutStore struct {
	workouts *kv.Collection[Workout]
	clock    calendar.Clock
}

func NewWorkoutStore(store kv.Store, clock calendar.Clock) *WorkoutStore {
	return &WorkoutStore{
		workouts: kv.NewCollection[Workout](store, kv.KeyWorkouts),
		clock:    clock,
	}
}

func (s *WorkoutStore) List(ctx context.Context) ([]Workout, error) {
	return s.workouts.List(ctx)
}

// Add appends a workout stamped with the current time. Its id is the unix
// millisecond timestamp, bumped when already taken.
func (s *WorkoutStore) Add(ctx context.Context, newWorkout NewWorkout) (*Workout, error) {
	if err := newWorkout.Validate(); err != nil {
		return nil, err
	}

	calories := newWorkout.Calories
	if calories == 0 {
		calories = newWorkout.Duration * CaloriesPerMinute
	}

	var added Workout
	_, err := s.workouts.Update(ctx, func(workouts []Workout) ([]Workout, error) {
		now := s.clock.Now()
		added = Workout{
			ID:        uniqueID(workouts, now.UnixMilli()),
			Type:      strings.TrimSpace(newWorkout.Type),
			Duration:  newWorkout.Duration,
			Calories:  calories,
			Timestamp: now,
		}
		return append(workouts, added), nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// Clear drops the workouts key.
func (s *WorkoutStore) Clear(ctx context.Context) error {
	return s.workouts.Clear(ctx)
}

func uniqueID(workouts []Workout, millis int64) string {
	taken := make(map[string]bool, len(workouts))
	for _, w := range workouts {
		taken[w.ID] = true
	}
	for {
		id := strconv.FormatInt(millis, 10)
		if !taken[id] {
			return id
		}
		millis++
	}
}

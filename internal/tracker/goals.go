package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/kv"
)

const (
	MinStepGoal    = 1000
	MaxStepGoal    = 50000
	MinCalorieGoal = 100
	MaxCalorieGoal = 5000
)

var ErrInvalidGoal = errors.New("invalid goal")

type Goals struct {
	StepGoal    int `json:"stepGoal"`
	CalorieGoal int `json:"calorieGoal"`
}

var DefaultGoals = Goals{
	StepGoal:    10000,
	CalorieGoal: 500,
}

func (g Goals) Validate() error {
	if g.StepGoal < MinStepGoal || g.StepGoal > MaxStepGoal {
		return fmt.Errorf("%w: step goal must be between %d and %d", ErrInvalidGoal, MinStepGoal, MaxStepGoal)
	}
	if g.CalorieGoal < MinCalorieGoal || g.CalorieGoal > MaxCalorieGoal {
		return fmt.Errorf("%w: calorie goal must be between %d and %d", ErrInvalidGoal, MinCalorieGoal, MaxCalorieGoal)
	}
	return nil
}

// GoalStore persists goals across weeks; absent goals read as DefaultGoals.
type GoalStore struct {
	goals *kv.Value[Goals]
}

func NewGoalStore(store kv.Store) *GoalStore {
	return &GoalStore{
		goals: kv.NewValue(store, kv.KeyGoals, DefaultGoals),
	}
}

func (s *GoalStore) Get(ctx context.Context) (Goals, error) {
	return s.goals.Get(ctx)
}

func (s *GoalStore) Save(ctx context.Context, goals Goals) error {
	if err := goals.Validate(); err != nil {
		return err
	}
	return s.goals.Set(ctx, goals)
}

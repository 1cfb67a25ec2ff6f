// Package achievement raises one notification per metric and day when a goal is reached.
package achievement

import (
	"context"

	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/tracker"

	log "github.com/sirupsen/logrus"
)

type Metric string

const (
	MetricSteps    Metric = "steps"
	MetricCalories Metric = "calories"
)

// Latches record which goals were already celebrated since the last goal-day rollover.
type Latches struct {
	Steps    bool `json:"steps"`
	Calories bool `json:"calories"`
}

type Metrics struct {
	StepsToday   int
	CaloriesWeek int
}

type Achievement struct {
	Metric Metric `json:"metric"`
	Value  int    `json:"value"`
	Goal   int    `json:"goal"`
}

func (a Achievement) Message() string {
	if a.Metric == MetricSteps {
		return "Step goal achieved!"
	}
	return "Calorie goal achieved!"
}

type Detector struct {
	latches        *kv.Value[Latches]
	metricsManager *metrics.Manager
}

func NewDetector(store kv.Store, metricsManager *metrics.Manager) *Detector {
	return &Detector{
		latches:        kv.NewValue(store, kv.KeyGoalLatches, Latches{}),
		metricsManager: metricsManager,
	}
}

func (d *Detector) Latches(ctx context.Context) (Latches, error) {
	return d.latches.Get(ctx)
}

// Evaluate latches every unlatched metric that reached its goal and returns
// an achievement for each. Already latched metrics never emit again.
func (d *Detector) Evaluate(ctx context.Context, current Metrics, goals tracker.Goals) ([]Achievement, error) {
	achievements := []Achievement{}
	_, err := d.latches.Update(ctx, func(latches Latches) (Latches, error) {
		achievements = achievements[:0]
		if !latches.Steps && current.StepsToday >= goals.StepGoal {
			latches.Steps = true
			achievements = append(achievements, Achievement{Metric: MetricSteps, Value: current.StepsToday, Goal: goals.StepGoal})
		}
		if !latches.Calories && current.CaloriesWeek >= goals.CalorieGoal {
			latches.Calories = true
			achievements = append(achievements, Achievement{Metric: MetricCalories, Value: current.CaloriesWeek, Goal: goals.CalorieGoal})
		}
		return latches, nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range achievements {
		log.WithFields(log.Fields{
			"metric": a.Metric,
			"value":  a.Value,
			"goal":   a.Goal,
		}).Info("goal achieved")
		if d.metricsManager != nil {
			d.metricsManager.CounterGoalAchievements.WithLabelValues(string(a.Metric)).Inc()
		}
	}
	return achievements, nil
}

// Reset clears both latches.
func (d *Detector) Reset(ctx context.Context) error {
	return d.latches.Set(ctx, Latches{})
}

package achievement

import (
	"context"
	"testing"

	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/tracker"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var goals = tracker.Goals{StepGoal: 10000, CalorieGoal: 500}

func TestDetector_Evaluate(t *testing.T) {
	ctx := context.Background()
	metricsManager := metrics.NewTestManager()
	detector := NewDetector(kv.NewMemoryStore(), metricsManager)

	achievements, err := detector.Evaluate(ctx, Metrics{StepsToday: 9999, CaloriesWeek: 100}, goals)
	require.NoError(t, err)
	assert.Empty(t, achievements)

	achievements, err = detector.Evaluate(ctx, Metrics{StepsToday: 10000, CaloriesWeek: 100}, goals)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, Achievement{Metric: MetricSteps, Value: 10000, Goal: 10000}, achievements[0])
	assert.Equal(t, "Step goal achieved!", achievements[0].Message())

	// latched, further steps do not emit again
	achievements, err = detector.Evaluate(ctx, Metrics{StepsToday: 15000, CaloriesWeek: 100}, goals)
	require.NoError(t, err)
	assert.Empty(t, achievements)

	achievements, err = detector.Evaluate(ctx, Metrics{StepsToday: 15000, CaloriesWeek: 600}, goals)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, MetricCalories, achievements[0].Metric)
	assert.Equal(t, "Calorie goal achieved!", achievements[0].Message())

	latches, err := detector.Latches(ctx)
	require.NoError(t, err)
	assert.Equal(t, Latches{Steps: true, Calories: true}, latches)

	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterGoalAchievements.WithLabelValues("steps")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterGoalAchievements.WithLabelValues("calories")))
}

func TestDetector_BothAtOnce(t *testing.T) {
	ctx := context.Background()
	detector := NewDetector(kv.NewMemoryStore(), nil)

	achievements, err := detector.Evaluate(ctx, Metrics{StepsToday: 12000, CaloriesWeek: 800}, goals)
	require.NoError(t, err)
	require.Len(t, achievements, 2)
	assert.Equal(t, MetricSteps, achievements[0].Metric)
	assert.Equal(t, MetricCalories, achievements[1].Metric)
}

func TestDetector_Reset(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	detector := NewDetector(store, nil)

	_, err := detector.Evaluate(ctx, Metrics{StepsToday: 12000}, goals)
	require.NoError(t, err)

	require.NoError(t, detector.Reset(ctx))
	achievements, err := detector.Evaluate(ctx, Metrics{StepsToday: 12000}, goals)
	require.NoError(t, err)
	require.Len(t, achievements, 1)

	// latches survive a new detector over the same store
	again, err := NewDetector(store, nil).Evaluate(ctx, Metrics{StepsToday: 12000}, goals)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestDetector_MalformedLatches(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, kv.KeyGoalLatches, "{not json"))

	achievements, err := NewDetector(store, nil).Evaluate(ctx, Metrics{StepsToday: 12000}, goals)
	require.NoError(t, err)
	assert.Len(t, achievements, 1)
}

// Package rollover applies the calendar boundary transitions of the tracker:
// a new week clears the logged workouts, a new day archives the step counter
// and a new goal day re-arms the achievement latches.
package rollover

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/achievement"
	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/streak"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/tracker"

	log "github.com/sirupsen/logrus"
)

const (
	KindWeek    = "week"
	KindDay     = "day"
	KindGoalDay = "goal_day"
)

// Report tells which transitions a Run applied.
type Report struct {
	WeekReset      bool `json:"weekReset"`
	StepsArchived  bool `json:"stepsArchived"`
	LatchesReset   bool `json:"latchesReset"`
	StreakRecorded bool `json:"streakRecorded"`
}

type Controller struct {
	clock    calendar.Clock
	workouts *tracker.WorkoutStore
	steps    *tracker.StepStore
	detector *achievement.Detector
	streak   *streak.Tracker

	weekMarker     *kv.Text
	stepDateMarker *kv.Text
	goalDateMarker *kv.Text

	metricsManager *metrics.Manager
}

type NewControllerParams struct {
	Store          kv.Store
	Clock          calendar.Clock
	Workouts       *tracker.WorkoutStore
	Steps          *tracker.StepStore
	Detector       *achievement.Detector
	Streak         *streak.Tracker
	MetricsManager *metrics.Manager
}

func NewController(params NewControllerParams) *Controller {
	return &Controller{
		clock:          params.Clock,
		workouts:       params.Workouts,
		steps:          params.Steps,
		detector:       params.Detector,
		streak:         params.Streak,
		weekMarker:     kv.NewText(params.Store, kv.KeyWeekStart),
		stepDateMarker: kv.NewText(params.Store, kv.KeyStepDate),
		goalDateMarker: kv.NewText(params.Store, kv.KeyGoalDate),
		metricsManager: params.MetricsManager,
	}
}

// Run applies the checks in order: week, day, goal day, then records today
// in the streak set when it already has a workout. Running it again on the
// same day changes nothing.
func (c *Controller) Run(ctx context.Context) (report Report, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.rollover.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := c.clock.Now()

	if report.WeekReset, err = c.checkWeek(ctx, now); err != nil {
		return report, fmt.Errorf("week rollover: %w", err)
	}
	if report.StepsArchived, err = c.checkDay(ctx, now); err != nil {
		return report, fmt.Errorf("day rollover: %w", err)
	}
	if report.LatchesReset, err = c.checkGoalDay(ctx, now); err != nil {
		return report, fmt.Errorf("goal day rollover: %w", err)
	}

	workouts, err := c.workouts.List(ctx)
	if err != nil {
		return report, err
	}
	if report.StreakRecorded, err = c.streak.RecordToday(ctx, workouts); err != nil {
		return report, fmt.Errorf("record streak day: %w", err)
	}

	return report, nil
}

// CheckWeek clears the week's workouts and the live step counter when now
// belongs to a different week than the stored marker.
func (c *Controller) CheckWeek(ctx context.Context) (bool, error) {
	return c.checkWeek(ctx, c.clock.Now())
}

// CheckDay archives the live step counter into yesterday's slot when the
// stored day differs from today. Without a stored day nothing is archived.
func (c *Controller) CheckDay(ctx context.Context) (bool, error) {
	return c.checkDay(ctx, c.clock.Now())
}

// CheckGoalDay resets the achievement latches once per day.
func (c *Controller) CheckGoalDay(ctx context.Context) (bool, error) {
	return c.checkGoalDay(ctx, c.clock.Now())
}

func (c *Controller) checkWeek(ctx context.Context, now time.Time) (bool, error) {
	weekStart := calendar.WeekStart(now).Format(time.RFC3339)
	stored, _, err := c.weekMarker.Get(ctx)
	if err != nil {
		return false, err
	}
	if stored == weekStart {
		return false, nil
	}

	if err := c.workouts.Clear(ctx); err != nil {
		return false, err
	}
	if err := c.steps.ResetToday(ctx); err != nil {
		return false, err
	}
	if err := c.weekMarker.Set(ctx, weekStart); err != nil {
		return false, err
	}

	log.Debugf("rollover: new week %s (was %q)", weekStart, stored)
	c.count(KindWeek)
	return true, nil
}

func (c *Controller) checkDay(ctx context.Context, now time.Time) (bool, error) {
	today := calendar.DateString(now)
	stored, found, err := c.stepDateMarker.Get(ctx)
	if err != nil {
		return false, err
	}
	if found && stored == today {
		return false, nil
	}

	archived := false
	if found {
		if err := c.steps.ArchiveToday(ctx); err != nil {
			return false, err
		}
		archived = true
		log.Debugf("rollover: steps of %s archived", stored)
		c.count(KindDay)
	}
	if err := c.stepDateMarker.Set(ctx, today); err != nil {
		return false, err
	}
	return archived, nil
}

func (c *Controller) checkGoalDay(ctx context.Context, now time.Time) (bool, error) {
	today := calendar.DateString(now)
	stored, _, err := c.goalDateMarker.Get(ctx)
	if err != nil {
		return false, err
	}
	if stored == today {
		return false, nil
	}

	if err := c.detector.Reset(ctx); err != nil {
		return false, err
	}
	if err := c.goalDateMarker.Set(ctx, today); err != nil {
		return false, err
	}
	c.count(KindGoalDay)
	return true, nil
}

func (c *Controller) count(kind string) {
	if c.metricsManager != nil {
		c.metricsManager.CounterRollovers.WithLabelValues(kind).Inc()
	}
}

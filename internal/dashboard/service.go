package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/2beens/fittrack/internal/achievement"
	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/rollover"
	"github.com/2beens/fittrack/internal/session"
	"github.com/2beens/fittrack/internal/streak"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/tracker"

	log "github.com/sirupsen/logrus"
)

const RecentWorkoutsLimit = 5

var ErrInvalidPeriod = errors.New("period must be one of day, week, month")

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=dashboard

type userSource interface {
	Current(ctx context.Context) (*session.User, bool, error)
}

type Stat struct {
	Value int  `json:"value"`
	Trend *int `json:"trend,omitempty"`
}

type GoalProgress struct {
	Current int `json:"current"`
	Target  int `json:"target"`
	Percent int `json:"percent"`
}

type Overview struct {
	User            *session.User             `json:"user,omitempty"`
	Date            string                    `json:"date"`
	Steps           Stat                      `json:"steps"`
	StepsYesterday  int                       `json:"stepsYesterday"`
	Calories        Stat                      `json:"calories"`
	Minutes         Stat                      `json:"minutes"`
	Week            activity.Summary          `json:"week"`
	Goals           tracker.Goals             `json:"goals"`
	StepProgress    GoalProgress              `json:"stepProgress"`
	CalorieProgress GoalProgress              `json:"calorieProgress"`
	Streak          int                       `json:"streak"`
	WeekChart       []activity.Bucket         `json:"weekChart"`
	RecentWorkouts  []tracker.Workout         `json:"recentWorkouts"`
	Achievements    []achievement.Achievement `json:"achievements"`
	Rollover        rollover.Report           `json:"rollover"`
}

type WorkoutResult struct {
	Workout      tracker.Workout           `json:"workout"`
	Achievements []achievement.Achievement `json:"achievements"`
}

type StepsResult struct {
	Steps        int                       `json:"steps"`
	Achievements []achievement.Achievement `json:"achievements"`
}

type ActivityView struct {
	Period  activity.Period   `json:"period"`
	Buckets []activity.Bucket `json:"buckets"`
	Totals  activity.Summary  `json:"totals"`
}

// Service runs every multi-key sequence of the tracker under one mutex. Every
// operation starts with the rollover checks, so writes after a day or week
// boundary land in the new period.
type Service struct {
	mutex sync.Mutex

	clock    calendar.Clock
	users    userSource
	workouts *tracker.WorkoutStore
	steps    *tracker.StepStore
	goals    *tracker.GoalStore
	streak   *streak.Tracker
	detector *achievement.Detector
	rollover *rollover.Controller

	metricsManager *metrics.Manager
}

type NewServiceParams struct {
	Store          kv.Store
	Clock          calendar.Clock
	Users          userSource
	MetricsManager *metrics.Manager
}

func NewService(params NewServiceParams) *Service {
	s := &Service{
		clock:          params.Clock,
		users:          params.Users,
		workouts:       tracker.NewWorkoutStore(params.Store, params.Clock),
		steps:          tracker.NewStepStore(params.Store),
		goals:          tracker.NewGoalStore(params.Store),
		streak:         streak.NewTracker(params.Store, params.Clock),
		detector:       achievement.NewDetector(params.Store, params.MetricsManager),
		metricsManager: params.MetricsManager,
	}
	s.rollover = rollover.NewController(rollover.NewControllerParams{
		Store:          params.Store,
		Clock:          params.Clock,
		Workouts:       s.workouts,
		Steps:          s.steps,
		Detector:       s.detector,
		Streak:         s.streak,
		MetricsManager: params.MetricsManager,
	})
	return s
}

func (s *Service) Load(ctx context.Context) (overview *Overview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	report, err := s.rollover.Run(ctx)
	if err != nil {
		return nil, err
	}

	overview = &Overview{Rollover: report}
	if s.users != nil {
		user, ok, err := s.users.Current(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			overview.User = user
		}
	}

	now := s.clock.Now()
	workouts, err := s.workouts.List(ctx)
	if err != nil {
		return nil, err
	}
	stepsToday, err := s.steps.Today(ctx)
	if err != nil {
		return nil, err
	}
	stepsYesterday, err := s.steps.Yesterday(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.Get(ctx)
	if err != nil {
		return nil, err
	}
	currentStreak, err := s.streak.Current(ctx)
	if err != nil {
		return nil, err
	}

	today := activity.Totals(activity.OnDay(workouts, now))
	yesterday := activity.Totals(activity.OnDay(workouts, calendar.AddDays(now, -1)))
	week := activity.Totals(workouts)

	overview.Date = calendar.DateString(now)
	overview.Steps = Stat{Value: stepsToday, Trend: activity.Trend(stepsToday, stepsYesterday)}
	overview.StepsYesterday = stepsYesterday
	overview.Calories = Stat{Value: today.Calories, Trend: activity.Trend(today.Calories, yesterday.Calories)}
	overview.Minutes = Stat{Value: today.Minutes, Trend: activity.Trend(today.Minutes, yesterday.Minutes)}
	overview.Week = week
	overview.Goals = goals
	overview.StepProgress = progress(stepsToday, goals.StepGoal)
	overview.CalorieProgress = progress(week.Calories, goals.CalorieGoal)
	overview.Streak = currentStreak
	overview.WeekChart = withTodaySteps(activity.Week(workouts, now), stepsToday)
	overview.RecentWorkouts = recent(workouts, RecentWorkoutsLimit)

	overview.Achievements, err = s.detector.Evaluate(ctx, achievement.Metrics{
		StepsToday:   stepsToday,
		CaloriesWeek: week.Calories,
	}, goals)
	if err != nil {
		return nil, err
	}

	return overview, nil
}

func (s *Service) AddWorkout(ctx context.Context, newWorkout tracker.NewWorkout) (result *WorkoutResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.add_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := newWorkout.Validate(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.rollover.Run(ctx); err != nil {
		return nil, err
	}

	workout, err := s.workouts.Add(ctx, newWorkout)
	if err != nil {
		return nil, err
	}
	if s.metricsManager != nil {
		s.metricsManager.CounterWorkouts.Inc()
	}
	log.Debugf("workout logged: %s, %d min, %d kcal", workout.Type, workout.Duration, workout.Calories)

	if err := s.streak.RecordDay(ctx, workout.Timestamp); err != nil {
		return nil, err
	}

	achievements, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return &WorkoutResult{Workout: *workout, Achievements: achievements}, nil
}

func (s *Service) AddSteps(ctx context.Context, steps int) (result *StepsResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.add_steps")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if steps < 1 {
		return nil, tracker.ErrInvalidSteps
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.rollover.Run(ctx); err != nil {
		return nil, err
	}

	total, err := s.steps.Add(ctx, steps)
	if err != nil {
		return nil, err
	}
	if s.metricsManager != nil {
		s.metricsManager.CounterStepsAdded.Add(float64(steps))
	}

	achievements, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return &StepsResult{Steps: total, Achievements: achievements}, nil
}

func (s *Service) SaveGoals(ctx context.Context, goals tracker.Goals) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.save_goals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.goals.Save(ctx, goals)
}

func (s *Service) Activity(ctx context.Context, period activity.Period) (view *ActivityView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.activity")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.rollover.Run(ctx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	workouts, err := s.workouts.List(ctx)
	if err != nil {
		return nil, err
	}
	stepsToday, err := s.steps.Today(ctx)
	if err != nil {
		return nil, err
	}

	var buckets []activity.Bucket
	switch period {
	case activity.PeriodDay:
		buckets = []activity.Bucket{activity.Day(workouts, now, now)}
	case activity.PeriodWeek:
		buckets = activity.Week(workouts, now)
	case activity.PeriodMonth:
		buckets = activity.Month(workouts, now)
	}

	totals := activity.Summary{}
	for _, b := range buckets {
		totals.Calories += b.Calories
		totals.Minutes += b.Minutes
	}

	return &ActivityView{
		Period:  period,
		Buckets: withTodaySteps(buckets, stepsToday),
		Totals:  totals,
	}, nil
}

// evaluate must be called with the mutex held.
func (s *Service) evaluate(ctx context.Context) ([]achievement.Achievement, error) {
	workouts, err := s.workouts.List(ctx)
	if err != nil {
		return nil, err
	}
	stepsToday, err := s.steps.Today(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.detector.Evaluate(ctx, achievement.Metrics{
		StepsToday:   stepsToday,
		CaloriesWeek: activity.Totals(workouts).Calories,
	}, goals)
}

func progress(current, target int) GoalProgress {
	p := GoalProgress{Current: current, Target: target}
	if target > 0 {
		p.Percent = min(current*100/target, 100)
	}
	return p
}

func withTodaySteps(buckets []activity.Bucket, steps int) []activity.Bucket {
	for i := range buckets {
		if buckets[i].IsToday {
			buckets[i].Steps = &steps
		}
	}
	return buckets
}

// recent returns up to limit workouts, newest first.
func recent(workouts []tracker.Workout, limit int) []tracker.Workout {
	sorted := slices.Clone(workouts)
	slices.SortStableFunc(sorted, func(a, b tracker.Workout) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func IsValidationError(err error) bool {
	return errors.Is(err, tracker.ErrInvalidWorkout) ||
		errors.Is(err, tracker.ErrInvalidSteps) ||
		errors.Is(err, tracker.ErrInvalidGoal) ||
		errors.Is(err, ErrInvalidPeriod)
}

// Package streak counts consecutive days with at least one workout.
package streak

import (
	"context"
	"slices"
	"time"

	"github.com/2beens/fittrack/internal/activity"
	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/tracker"

	log "github.com/sirupsen/logrus"
)

// Compute returns the length of the run of consecutive days ending today, or
// ending yesterday when today has no entry yet. Dates are YYYY-MM-DD strings
// read in today's location; malformed and future dates are ignored.
func Compute(dates []string, today time.Time) int {
	todayStart := calendar.StartOfDay(today)

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day, err := calendar.ParseDate(d, today.Location())
		if err != nil {
			log.Warnf("streak: skipping malformed activity date %q", d)
			continue
		}
		if day.After(todayStart) {
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return 0
	}

	slices.SortFunc(days, func(a, b time.Time) int {
		return b.Compare(a)
	})
	days = slices.CompactFunc(days, func(a, b time.Time) bool {
		return a.Equal(b)
	})

	expected := todayStart
	if !days[0].Equal(todayStart) {
		// one day of grace, today may still get its workout
		expected = calendar.AddDays(todayStart, -1)
	}

	streak := 0
	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = calendar.AddDays(expected, -1)
	}
	return streak
}

// Tracker owns the persisted set of active days.
type Tracker struct {
	dates *kv.Collection[string]
	clock calendar.Clock
}

func NewTracker(store kv.Store, clock calendar.Clock) *Tracker {
	return &Tracker{
		dates: kv.NewCollection[string](store, kv.KeyActivityDates),
		clock: clock,
	}
}

func (t *Tracker) Dates(ctx context.Context) ([]string, error) {
	return t.dates.List(ctx)
}

// RecordDay adds day's date to the set, keeping it deduplicated and newest first.
func (t *Tracker) RecordDay(ctx context.Context, day time.Time) error {
	date := calendar.DateString(day)
	_, err := t.dates.Update(ctx, func(dates []string) ([]string, error) {
		if !slices.Contains(dates, date) {
			dates = append(dates, date)
		}
		slices.Sort(dates)
		dates = slices.Compact(dates)
		slices.Reverse(dates)
		return dates, nil
	})
	return err
}

// RecordToday adds today to the set when at least one of workouts was logged today.
func (t *Tracker) RecordToday(ctx context.Context, workouts []tracker.Workout) (bool, error) {
	now := t.clock.Now()
	if len(activity.OnDay(workouts, now)) == 0 {
		return false, nil
	}
	if err := t.RecordDay(ctx, now); err != nil {
		return false, err
	}
	return true, nil
}

// Current computes the streak as of now.
func (t *Tracker) Current(ctx context.Context) (int, error) {
	dates, err := t.dates.List(ctx)
	if err != nil {
		return 0, err
	}
	return Compute(dates, t.clock.Now()), nil
}

// Package activity buckets workouts by calendar day for the dashboard and
// activity views. Everything here is pure; "now" always comes from the caller.
package activity

import (
	"math"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/tracker"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

type Bucket struct {
	Date      string `json:"date"`      // 2024-03-14
	Label     string `json:"label"`     // "Thu" in week view, "14" in month view
	DateLabel string `json:"dateLabel"` // "Mar 14"
	Calories  int    `json:"calories"`
	Minutes   int    `json:"minutes"`
	IsToday   bool   `json:"isToday"`
	// only set on today's bucket
	Steps *int `json:"steps,omitempty"`
}

type Summary struct {
	Calories int `json:"calories"`
	Minutes  int `json:"minutes"`
}

// Day returns the single bucket of day's calendar date.
func Day(workouts []tracker.Workout, day, now time.Time) Bucket {
	return bucketFor(workouts, day, now, day.Format("Mon"))
}

// Week returns 7 buckets, Monday through Sunday of now's week.
func Week(workouts []tracker.Workout, now time.Time) []Bucket {
	start := calendar.WeekStart(now)
	buckets := make([]Bucket, 0, 7)
	for i := 0; i < 7; i++ {
		date := calendar.AddDays(start, i)
		buckets = append(buckets, bucketFor(workouts, date, now, date.Format("Mon")))
	}
	return buckets
}

// Month returns one bucket per day of now's month.
func Month(workouts []tracker.Workout, now time.Time) []Bucket {
	start := calendar.MonthStart(now)
	days := calendar.DaysInMonth(now)
	buckets := make([]Bucket, 0, days)
	for i := 0; i < days; i++ {
		date := calendar.AddDays(start, i)
		buckets = append(buckets, bucketFor(workouts, date, now, date.Format("2")))
	}
	return buckets
}

// OnDay filters workouts logged on day's calendar date, in day's location.
func OnDay(workouts []tracker.Workout, day time.Time) []tracker.Workout {
	matching := make([]tracker.Workout, 0)
	for _, w := range workouts {
		if calendar.SameDay(day, w.Timestamp) {
			matching = append(matching, w)
		}
	}
	return matching
}

func Totals(workouts []tracker.Workout) Summary {
	totals := Summary{}
	for _, w := range workouts {
		totals.Calories += w.Calories
		totals.Minutes += w.Duration
	}
	return totals
}

// Trend is the rounded percentage change from previous to current.
// It is undefined (nil) when both are zero, and 100 when only previous is zero.
func Trend(current, previous int) *int {
	if previous == 0 && current == 0 {
		return nil
	}
	trend := 100
	if previous != 0 {
		// JS Math.round semantics: half rounds towards +Inf
		trend = int(math.Floor(float64(current-previous)/float64(previous)*100 + 0.5))
	}
	return &trend
}

func bucketFor(workouts []tracker.Workout, date, now time.Time, label string) Bucket {
	totals := Totals(OnDay(workouts, date))
	return Bucket{
		Date:      calendar.DateString(date),
		Label:     label,
		DateLabel: date.Format("Jan 2"),
		Calories:  totals.Calories,
		Minutes:   totals.Minutes,
		IsToday:   calendar.SameDay(now, date),
	}
}

package calendar

import (
	"sync"
	"time"
)

// DateLayout is the persisted day format, e.g. 2026-10-14
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in the given location (local time when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock is a settable clock, used by tests to simulate day and week boundaries.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves by calendar days, so DST transitions don't shift the wall clock.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// WeekStart returns Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := StartOfDay(t)
	// time.Sunday == 0, shift so that Monday == 0
	offset := (int(day.Weekday()) + 6) % 7
	return AddDays(day, -offset)
}

// MonthStart returns the 1st of t's month at 00:00.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of calendar days in t's month.
func DaysInMonth(t time.Time) int {
	return AddDays(MonthStart(t).AddDate(0, 1, 0), -1).Day()
}

func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateString formats t's calendar day in its own location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate reads a persisted day string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

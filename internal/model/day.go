package model

import (
	"fmt"
	"strings"
	"time"
)

// Day is a calendar date with no time-of-day or zone attached.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDay extracts the calendar day from either YYYY-MM-DD or a full timestamp.
//
// Timestamps are cut at the date/time separator rather than converted between
// zones, so "2024-01-15T00:00:00Z" and "2024-01-15" are the same day everywhere.
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, false
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// AddDays normalizes across month and year boundaries.
func (d Day) AddDays(n int) Day {
	return DayOf(d.time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }

// DaysUntil returns the number of calendar days from d to o (negative if o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.time().Sub(d.time()).Hours() / 24)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

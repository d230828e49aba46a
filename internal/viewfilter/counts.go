package viewfilter

import (
	"time"

	"taskdeck/internal/model"
)

// Counts holds the sidebar badge numbers. They ignore search, tag and sort.
type Counts struct {
	Today    int
	Upcoming int
	// Lists maps every requested list name to its task count (zero included).
	Lists map[string]int
}

// CountBuckets counts tasks per view using MatchesView, so a badge always equals
// the length of Apply for that view with no search or tag active.
func CountBuckets(tasks []model.Task, lists []string, now time.Time) Counts {
	today := model.DayOf(now)
	c := Counts{Lists: make(map[string]int, len(lists))}
	for _, name := range lists {
		c.Lists[name] = 0
	}
	for _, t := range tasks {
		if MatchesView(t, ViewToday, today) {
			c.Today++
		}
		if MatchesView(t, ViewUpcoming, today) {
			c.Upcoming++
		}
		if name, ok := t.List.Get(); ok {
			if _, tracked := c.Lists[name]; tracked {
				c.Lists[name]++
			}
		}
	}
	return c
}

// For returns the count for a view selector; unknown lists count as zero.
func (c Counts) For(view string) int {
	switch view {
	case ViewToday:
		return c.Today
	case ViewUpcoming:
		return c.Upcoming
	}
	return c.Lists[view]
}

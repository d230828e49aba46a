// Package viewfilter derives the visible task sequence and the sidebar bucket
// counts from the task collection and the current view parameters.
//
// Everything here is a pure function of its arguments. "Now" is passed in by
// the caller on every call so day boundaries are never cached.
package viewfilter

import (
	"sort"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// Reserved view selectors. Any other non-empty selector names a list.
const (
	ViewToday    = "today"
	ViewUpcoming = "upcoming"
	ViewCalendar = "calendar"
	// ViewAll is the empty selector, used while a tag drives the view.
	ViewAll = ""
)

type SortField string

const (
	SortNone     SortField = ""
	SortPriority SortField = "priority"
	SortStatus   SortField = "status"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type Params struct {
	View   string
	Query  string
	Tag    model.Opt[string]
	SortBy SortField
	Order  SortOrder
}

// IsReservedView reports whether v is one of the built-in view tokens (or empty).
func IsReservedView(v string) bool {
	switch v {
	case ViewToday, ViewUpcoming, ViewCalendar, ViewAll:
		return true
	}
	return false
}

// Apply runs view filter, search filter, tag filter and sort, in that order.
// The input slice is never modified.
func Apply(tasks []model.Task, p Params, now time.Time) []model.Task {
	today := model.DayOf(now)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if MatchesView(t, p.View, today) {
			out = append(out, t)
		}
	}

	if q := normalizeQuery(p.Query); q != "" {
		kept := out[:0]
		for _, t := range out {
			if matchesQuery(t, q) {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	if tag, ok := p.Tag.Get(); ok {
		kept := out[:0]
		for _, t := range out {
			if t.HasTag(tag) {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	Sort(out, p.SortBy, p.Order)
	return out
}

// MatchesView is the single view predicate shared by Apply and Counts.
func MatchesView(t model.Task, view string, today model.Day) bool {
	switch view {
	case ViewToday:
		return IsDueToday(t, today)
	case ViewUpcoming:
		return IsUpcoming(t, today)
	case ViewCalendar, ViewAll:
		return true
	default:
		list, ok := t.List.Get()
		return ok && list == view
	}
}

// IsDueToday: undated tasks always count as due today.
func IsDueToday(t model.Task, today model.Day) bool {
	if !t.DueDate.Present() {
		return true
	}
	due, ok := t.Due()
	return ok && due.Compare(today) == 0
}

// IsUpcoming: dated tasks due tomorrow or later. Undated tasks never qualify.
func IsUpcoming(t model.Task, today model.Day) bool {
	due, ok := t.Due()
	if !ok {
		return false
	}
	return due.Compare(today.AddDays(1)) >= 0
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func matchesQuery(t model.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description.OrZero()), q)
}

// PriorityRank maps high=3, medium=2, low=1; anything else ranks as medium.
func PriorityRank(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 3
	case model.PriorityLow:
		return 1
	default:
		return 2
	}
}

// StatusRank maps todo=1, in-progress=2, done=3; anything else ranks as todo.
func StatusRank(s model.Status) int {
	switch s {
	case model.StatusInProgress:
		return 2
	case model.StatusDone:
		return 3
	default:
		return 1
	}
}

// Sort stable-sorts tasks in place. SortNone leaves the order untouched.
func Sort(tasks []model.Task, by SortField, order SortOrder) {
	var rank func(model.Task) int
	switch by {
	case SortPriority:
		rank = func(t model.Task) int { return PriorityRank(t.Priority) }
	case SortStatus:
		rank = func(t model.Task) int { return StatusRank(t.Status) }
	default:
		return
	}
	desc := order == Desc
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := rank(tasks[i]), rank(tasks[j])
		if desc {
			return a > b
		}
		return a < b
	})
}

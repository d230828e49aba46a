package tui

import (
	"fmt"

	"taskdeck/internal/model"
)

type dueState int

const (
	dueNone dueState = iota
	dueLater
	dueSoon
	dueOverdue
)

// dueSoonDays is the window (inclusive) in which an open task is highlighted.
const dueSoonDays = 3

// dueLabel describes the due date relative to today.
func dueLabel(t model.Task, today model.Day) string {
	if !t.DueDate.Present() {
		return "No due date"
	}
	if t.Status == model.StatusDone {
		return "Completed"
	}
	due, ok := t.Due()
	if !ok {
		return "Invalid date"
	}
	switch n := today.DaysUntil(due); {
	case n < 0:
		return fmt.Sprintf("Overdue by %d %s", -n, plural(-n, "day", "days"))
	case n == 0:
		return "Due today"
	case n == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", n)
	}
}

// dueStatus drives highlighting. Done tasks are never overdue or due soon.
func dueStatus(t model.Task, today model.Day) dueState {
	due, ok := t.Due()
	if !ok || t.Status == model.StatusDone {
		return dueNone
	}
	switch n := today.DaysUntil(due); {
	case n < 0:
		return dueOverdue
	case n <= dueSoonDays:
		return dueSoon
	default:
		return dueLater
	}
}

// visibleTags returns the first max tags and how many were left out.
func visibleTags(tags []string, max int) ([]string, int) {
	if len(tags) <= max {
		return tags, 0
	}
	return tags[:max], len(tags) - max
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

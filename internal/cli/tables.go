package cli

import (
	"fmt"
	"strconv"
	"strings"

	"taskdeck/internal/model"
	"taskdeck/internal/viewfilter"
)

// taskTable marshals as a plain task array and renders as rows in text mode.
type taskTable []model.Task

func (taskTable) Columns() []string {
	return []string{"ID", "STATUS", "PRIORITY", "DUE", "LIST", "TITLE", "TAGS"}
}

func (t taskTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, task := range t {
		due := "-"
		if d, ok := task.Due(); ok {
			due = d.String()
		}
		rows = append(rows, []string{
			shortID(task.ID),
			string(task.Status),
			string(task.Priority),
			due,
			task.List.Or("-"),
			task.Title,
			strings.Join(task.Tags, ","),
		})
	}
	return rows
}

// taskDetail is one task; text mode prints a field list.
type taskDetail model.Task

func (d taskDetail) String() string {
	t := model.Task(d)
	var b strings.Builder
	line := func(k, v string) { fmt.Fprintf(&b, "%-10s %s\n", k+":", v) }
	line("id", t.ID)
	line("title", t.Title)
	line("status", string(t.Status))
	line("priority", string(t.Priority))
	due := "-"
	if day, ok := t.Due(); ok {
		due = day.String()
	}
	line("due", due)
	line("list", t.List.Or("-"))
	line("tags", strings.Join(t.Tags, ", "))
	if desc := t.Description.OrZero(); desc != "" {
		line("notes", desc)
	}
	for _, s := range t.Subtasks {
		box := "[ ]"
		if s.Completed {
			box = "[x]"
		}
		line("subtask", box+" "+s.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

type countsTable struct {
	Today    int            `json:"today"`
	Upcoming int            `json:"upcoming"`
	Lists    map[string]int `json:"lists"`

	order []string
}

func newCountsTable(c viewfilter.Counts, lists []string) countsTable {
	return countsTable{Today: c.Today, Upcoming: c.Upcoming, Lists: c.Lists, order: lists}
}

func (countsTable) Columns() []string { return []string{"VIEW", "COUNT"} }

func (c countsTable) Rows() [][]string {
	rows := [][]string{
		{viewfilter.ViewToday, strconv.Itoa(c.Today)},
		{viewfilter.ViewUpcoming, strconv.Itoa(c.Upcoming)},
	}
	for _, name := range c.order {
		rows = append(rows, []string{name, strconv.Itoa(c.Lists[name])})
	}
	return rows
}

type nameRow struct {
	Name    string `json:"name"`
	Builtin bool   `json:"builtin,omitempty"`
	Color   string `json:"color,omitempty"`
}

type nameTable []nameRow

func (nameTable) Columns() []string { return []string{"NAME", "KIND"} }

func (t nameTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		kind := "custom"
		switch {
		case r.Builtin:
			kind = "built-in"
		case r.Color != "":
			kind = r.Color
		}
		rows = append(rows, []string{r.Name, kind})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

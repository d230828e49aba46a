package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"taskdeck/internal/model"
)

func TestRenderRow_FitsWidthAndCollapsesTags(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	today := model.Day{Year: 2024, Month: 1, Day: 15}
	d := newTaskRowDelegate(today, func(string) string { return "#3B82F6" }, true)
	task := model.Task{
		Title:    "Prepare the quarterly planning document for the whole team",
		Status:   model.StatusTodo,
		Priority: model.PriorityHigh,
		Tags:     []string{"work", "q1", "docs", "urgent", "later"},
		DueDate:  model.Some("2024-01-14"),
	}

	for _, w := range []int{40, 60, 100} {
		row := d.renderRow(task, w, false)
		if got := xansi.StringWidth(row); got > w {
			t.Fatalf("width %d: row is %d cells wide: %q", w, got, row)
		}
	}

	row := xansi.Strip(d.renderRow(task, 100, false))
	for _, want := range []string{"[ ] !", "#work", "#q1", "#docs", "+2", "Overdue by 1 day"} {
		if !strings.Contains(row, want) {
			t.Fatalf("expected %q in row %q", want, row)
		}
	}
	if strings.Contains(row, "#urgent") {
		t.Fatalf("only three tags should be shown: %q", row)
	}
}

func TestRenderRow_NarrowPaneKeepsDueLabel(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	today := model.Day{Year: 2024, Month: 1, Day: 15}
	d := newTaskRowDelegate(today, nil, false)
	task := model.Task{
		Title:   "Call the bank",
		Status:  model.StatusDone,
		Tags:    []string{"errands", "finance", "phone"},
		DueDate: model.Some("2024-01-15"),
	}
	row := d.renderRow(task, 30, false)
	if !strings.Contains(row, "Completed") {
		t.Fatalf("expected due label in narrow row, got %q", row)
	}
	if strings.Contains(row, "#errands") {
		t.Fatalf("tags should drop before the due label, got %q", row)
	}
	if !strings.HasPrefix(row, "[x]") {
		t.Fatalf("done task should be checked, got %q", row)
	}
}

package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdeck/internal/model"
)

const maxRowTags = 3

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

// taskRowDelegate renders one task per line: checkbox, priority marker and
// title on the left; tags and the relative due label on the right.
type taskRowDelegate struct {
	today    model.Day
	tagColor func(string) string
	focused  bool

	normal   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	muted    lipgloss.Style
	overdue  lipgloss.Style
	soon     lipgloss.Style
}

func newTaskRowDelegate(today model.Day, tagColor func(string) string, focused bool) taskRowDelegate {
	if tagColor == nil {
		tagColor = func(string) string { return "" }
	}
	return taskRowDelegate{
		today:    today,
		tagColor: tagColor,
		focused:  focused,
		normal:   lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		done:     styleMuted().Strikethrough(true),
		muted:    styleMuted(),
		overdue:  lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		soon:     lipgloss.NewStyle().Foreground(colorWarn),
	}
}

func (d taskRowDelegate) Height() int                             { return 1 }
func (d taskRowDelegate) Spacing() int                            { return 0 }
func (d taskRowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskRowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	width := m.Width()
	if width < 12 {
		return
	}
	fmt.Fprint(w, d.renderRow(it.task, width, index == m.Index() && d.focused))
}

func (d taskRowDelegate) renderRow(t model.Task, width int, selected bool) string {
	box := "[ ]"
	if t.Status == model.StatusDone {
		box = "[x]"
	} else if t.Status == model.StatusInProgress {
		box = "[~]"
	}
	marker := " "
	switch t.Priority {
	case model.PriorityHigh:
		marker = "!"
	case model.PriorityLow:
		marker = "."
	}
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "(untitled)"
	}

	due := dueLabel(t, d.today)
	dueW := xansi.StringWidth(due)
	switch dueStatus(t, d.today) {
	case dueOverdue:
		due = d.overdue.Render(due)
	case dueSoon:
		due = d.soon.Render(due)
	default:
		due = d.muted.Render(due)
	}

	var right []string
	shown, more := visibleTags(t.Tags, maxRowTags)
	for _, tag := range shown {
		right = append(right, tagStyle(d.tagColor(tag)).Render("#"+tag))
	}
	if more > 0 {
		right = append(right, d.muted.Render(fmt.Sprintf("+%d", more)))
	}
	right = append(right, due)
	rightS := strings.Join(right, " ")
	rightW := xansi.StringWidth(rightS)
	if rightW > width/2 {
		// Narrow pane: keep only the due label.
		rightS, rightW = due, dueW
	}

	left := box + " " + marker + " "
	avail := width - rightW - 2 - xansi.StringWidth(left)
	if avail < 1 {
		avail = 1
	}
	title = xansi.Truncate(title, avail, "…")
	if t.Status == model.StatusDone && !selected {
		title = d.done.Render(title)
	}
	left += title

	gap := width - xansi.StringWidth(left) - rightW
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + rightS
	if xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "")
	}
	if selected {
		return d.selected.Render(line)
	}
	return d.normal.Render(line)
}

func newTaskList() list.Model {
	l := list.New(nil, newTaskRowDelegate(model.Day{}, nil, false), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	return l
}

// selectTaskByID moves the cursor to id, keeping it in place when id is gone.
func selectTaskByID(l *list.Model, id string) {
	if id == "" {
		return
	}
	for i, it := range l.Items() {
		if ti, ok := it.(taskItem); ok && ti.task.ID == id {
			l.Select(i)
			return
		}
	}
}

func selectedTask(l list.Model) (model.Task, bool) {
	it, ok := l.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

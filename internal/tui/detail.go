package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdeck/internal/model"
	"taskdeck/internal/selection"
	"taskdeck/internal/workbench"
)

var fieldLabels = [fieldCount]string{
	fieldTitle:       "Title",
	fieldDescription: "Notes",
	fieldStatus:      "Status",
	fieldPriority:    "Priority",
	fieldDue:         "Due",
	fieldList:        "List",
	fieldTags:        "Tags",
	fieldSubtasks:    "Subtasks",
}

const labelWidth = 10

func (m appModel) renderDetail(width int) string {
	mode := m.wb.Mode()
	if mode == selection.Idle {
		return styleMuted().Render("No task selected.\n\nPress enter on a task to open it,\nn to create one, or p to quick add.")
	}
	d, _ := m.wb.Draft()
	focused := m.pane == paneDetail

	var b strings.Builder
	heading := "New task"
	if mode == selection.Viewing {
		heading = "Task"
		if t, ok := m.wb.Selected(); ok {
			heading += "  " + styleMuted().Render(shortID(t.ID))
		}
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(heading))
	b.WriteString("\n\n")

	today := model.DayOf(m.wb.Now())
	for f := field(0); f < fieldCount; f++ {
		active := focused && m.field == f
		label := fieldLabels[f]
		labelSt := styleMuted().Width(labelWidth)
		if active {
			labelSt = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Width(labelWidth)
		}
		valueW := max(width-labelWidth, 8)
		b.WriteString(labelSt.Render(label))
		b.WriteString(m.renderFieldValue(f, d, active, valueW, today))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailActions(mode))
	return b.String()
}

func (m appModel) renderFieldValue(f field, d selection.Draft, active bool, width int, today model.Day) string {
	muted := styleMuted()
	editingThis := active && m.editing
	switch f {
	case fieldTitle:
		if editingThis {
			return m.title.View()
		}
		if strings.TrimSpace(d.Title) == "" {
			return muted.Render("(required)")
		}
		return lipgloss.NewStyle().Bold(true).Render(xansi.Truncate(d.Title, width, "…"))

	case fieldDescription:
		if editingThis {
			return "\n" + m.desc.View()
		}
		if strings.TrimSpace(d.Description) == "" {
			return muted.Render("none")
		}
		if m.wb.Mode() == selection.Viewing {
			return "\n" + renderMarkdown(d.Description, width+labelWidth)
		}
		return xansi.Truncate(strings.ReplaceAll(d.Description, "\n", " "), width, "…")

	case fieldStatus:
		return cycler(string(d.Status), active)

	case fieldPriority:
		v := cycler(string(d.Priority), active)
		if d.Priority == model.PriorityHigh {
			v = lipgloss.NewStyle().Foreground(colorDanger).Render(v)
		}
		return v

	case fieldDue:
		if d.DueDate == "" {
			return muted.Render("none")
		}
		probe := model.Task{DueDate: model.Some(d.DueDate), Status: d.Status}
		return d.DueDate + "  " + muted.Render(dueLabel(probe, today))

	case fieldList:
		return cycler(d.List.Or("none"), active)

	case fieldTags:
		return m.renderTagPicker(d, active, width)

	case fieldSubtasks:
		return m.renderSubtasks(d, active, width)
	}
	return ""
}

func cycler(v string, active bool) string {
	if active {
		return "‹ " + v + " ›"
	}
	return v
}

// renderTagPicker shows every known tag; selected ones are checked.
func (m appModel) renderTagPicker(d selection.Draft, active bool, width int) string {
	meta := m.wb.Metadata()
	tags := m.pickerTags(d)
	if len(tags) == 0 {
		return styleMuted().Render("none (t in sidebar adds one)")
	}
	parts := make([]string, 0, len(tags))
	for i, t := range tags {
		mark := "○"
		if slices.Contains(d.Tags, t) {
			mark = "●"
		}
		s := tagStyle(meta.TagColor(t)).Render(mark + " " + t)
		if active && i == m.tagIdx {
			s = lipgloss.NewStyle().Background(colorSelectedBg).Render(s)
		}
		parts = append(parts, s)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "  "))
}

// pickerTags is every known tag followed by tags the draft carries that are
// no longer known.
func (m appModel) pickerTags(d selection.Draft) []string {
	meta := m.wb.Metadata()
	tags := meta.Tags()
	for _, t := range d.Tags {
		if !meta.HasTag(t) {
			tags = append(tags, t)
		}
	}
	return tags
}

func (m appModel) renderSubtasks(d selection.Draft, active bool, width int) string {
	if len(d.Subtasks) == 0 {
		return styleMuted().Render("none (a adds one)")
	}
	done := 0
	for _, s := range d.Subtasks {
		if s.Completed {
			done++
		}
	}
	var b strings.Builder
	b.WriteString(styleMuted().Render(fmt.Sprintf("%d/%d done", done, len(d.Subtasks))))
	for i, s := range d.Subtasks {
		box := "[ ]"
		if s.Completed {
			box = "[x]"
		}
		line := strings.Repeat(" ", labelWidth) + box + " " + xansi.Truncate(s.Title, width-4, "…")
		if active && i == m.subIdx {
			line = lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(line)
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (m appModel) renderDetailActions(mode selection.Mode) string {
	save := "[ctrl+s] Save"
	if mode == selection.Creating {
		save = "[ctrl+s] Create"
	}
	if m.wb.Busy(workbench.ActionSave) {
		save = "Saving..."
	}
	parts := []string{lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(save)}
	if mode == selection.Viewing {
		del := "[d] Delete"
		if m.wb.Busy(workbench.ActionDelete) {
			del = "Deleting..."
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(colorDanger).Render(del))
	}
	if m.wb.Busy(workbench.ActionParse) {
		parts = append(parts, styleMuted().Render("Parsing..."))
	}
	parts = append(parts, styleMuted().Render("[esc] Close"))
	return strings.Join(parts, "   ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

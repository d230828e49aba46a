package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdeck/internal/model"
	"taskdeck/internal/viewfilter"
)

type entryKind int

const (
	entryView entryKind = iota
	entryList
	entryTag
)

type sidebarEntry struct {
	kind    entryKind
	name    string
	count   int
	builtin bool
	color   string
}

func (e sidebarEntry) label() string {
	switch e.kind {
	case entryTag:
		return "#" + e.name
	case entryView:
		return strings.ToUpper(e.name[:1]) + e.name[1:]
	}
	return e.name
}

// buildSidebar lists the reserved views, then every list, then every tag.
func buildSidebar(counts viewfilter.Counts, lists, tags []string, tagColor func(string) string) []sidebarEntry {
	out := []sidebarEntry{
		{kind: entryView, name: viewfilter.ViewToday, count: counts.Today},
		{kind: entryView, name: viewfilter.ViewUpcoming, count: counts.Upcoming},
		{kind: entryView, name: viewfilter.ViewCalendar, count: -1},
	}
	for _, l := range lists {
		out = append(out, sidebarEntry{kind: entryList, name: l, count: counts.For(l), builtin: model.IsBuiltinList(l)})
	}
	for _, t := range tags {
		out = append(out, sidebarEntry{kind: entryTag, name: t, count: -1, color: tagColor(t)})
	}
	return out
}

func renderSidebar(entries []sidebarEntry, cursor int, focused bool, p viewfilter.Params, degraded bool, width int) string {
	header := lipgloss.NewStyle().Bold(true)
	muted := styleMuted()
	sel := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	var b strings.Builder
	lastKind := entryKind(-1)
	for i, e := range entries {
		if e.kind != lastKind {
			if i > 0 {
				b.WriteString("\n")
			}
			switch e.kind {
			case entryView:
				b.WriteString(header.Render("Views"))
			case entryList:
				b.WriteString(header.Render("Lists"))
			case entryTag:
				b.WriteString(header.Render("Tags"))
			}
			b.WriteString("\n")
			lastKind = e.kind
		}

		active := false
		switch e.kind {
		case entryView, entryList:
			active = !p.Tag.Present() && p.View == e.name
		case entryTag:
			active = p.Tag.OrZero() == e.name
		}
		mark, markW := "  ", 2
		if active {
			mark = "› "
		}
		count := ""
		if e.count >= 0 {
			count = fmt.Sprint(e.count)
		}
		avail := width - markW - len(count) - 1
		if avail < 1 {
			avail = 1
		}
		label := xansi.Truncate(e.label(), avail, "…")
		gap := width - markW - xansi.StringWidth(label) - len(count)
		if gap < 1 {
			gap = 1
		}
		line := mark + label + strings.Repeat(" ", gap) + count
		switch {
		case focused && i == cursor:
			line = sel.Render(line)
		case e.kind == entryTag:
			line = mark + tagStyle(e.color).Render(label) + strings.Repeat(" ", gap) + muted.Render(count)
		case count != "":
			line = mark + label + strings.Repeat(" ", gap) + muted.Render(count)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if degraded {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorWarn).Render("offline: cached names"))
	}
	return strings.TrimRight(b.String(), "\n")
}

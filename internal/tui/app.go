package tui

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/model"
	"taskdeck/internal/notify"
	"taskdeck/internal/selection"
	"taskdeck/internal/store"
	"taskdeck/internal/viewfilter"
	"taskdeck/internal/workbench"
)

type pane int

const (
	paneSidebar pane = iota
	paneList
	paneDetail
)

func (p pane) String() string {
	switch p {
	case paneSidebar:
		return "sidebar"
	case paneDetail:
		return "detail"
	default:
		return "list"
	}
}

func parsePane(s string) pane {
	switch s {
	case "sidebar":
		return paneSidebar
	case "detail":
		return paneDetail
	}
	return paneList
}

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptParse
	promptAddList
	promptAddTag
	promptSubtask
	promptDue
	promptConfirm
)

// field is a row of the detail form.
type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldStatus
	fieldPriority
	fieldDue
	fieldList
	fieldTags
	fieldSubtasks
	fieldCount
)

// confirmTarget is what a pending y/n confirmation will delete. For lists
// and tags kind says which; task deletes set task.
type confirmTarget struct {
	task  bool
	kind  entryKind
	name  string
	label string
}

type (
	loadDoneMsg   struct{ err error }
	actionDoneMsg struct {
		action workbench.Action
		err    error
	}
	clockTickMsg time.Time
)

const (
	sidebarWidth = 26
	headerLines  = 2
	footerLines  = 2
)

type appModel struct {
	ctx  context.Context
	wb   *workbench.Workbench
	ui   UIStateStore
	log  *slog.Logger
	keys keyMap
	feed *toastFeed

	width  int
	height int
	pane   pane

	sidebar []sidebarEntry
	sideIdx int

	tasks     list.Model
	spinner   spinner.Model
	firstLoad bool

	prompt  promptKind
	input   textinput.Model
	confirm confirmTarget

	field   field
	editing bool
	title   textinput.Model
	desc    textarea.Model
	tagIdx  int
	subIdx  int

	toasts []notify.Notification
}

func newAppModel(ctx context.Context, wb *workbench.Workbench, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := appModel{
		ctx:       ctx,
		wb:        wb,
		ui:        opts.UIState,
		log:       log,
		keys:      defaultKeyMap(),
		pane:      paneList,
		tasks:     newTaskList(),
		firstLoad: !wb.Loaded(),
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.input = textinput.New()
	m.input.CharLimit = 500

	m.title = textinput.New()
	m.title.Placeholder = "Task title"
	m.title.CharLimit = 200

	m.desc = textarea.New()
	m.desc.Placeholder = "Description (markdown)"
	m.desc.CharLimit = 1000
	m.desc.ShowLineNumbers = false
	m.desc.SetHeight(5)

	m.restoreUIState()
	m.refresh()
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(), m.feed.wait(), clockTick()}
	if m.firstLoad {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m appModel) loadCmd() tea.Cmd {
	wb, ctx := m.wb, m.ctx
	return func() tea.Msg { return loadDoneMsg{err: wb.Load(ctx)} }
}

// run executes a workbench action off the UI goroutine.
func (m appModel) run(a workbench.Action, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return actionDoneMsg{action: a, err: fn(ctx)} }
}

// clockTick re-renders every minute so relative due labels follow midnight.
func clockTick() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m *appModel) restoreUIState() {
	if m.ui == nil {
		return
	}
	st, err := m.ui.LoadUIState(m.ctx)
	if err != nil {
		m.log.Warn("load ui state", "err", err)
	}
	switch {
	case st.Tag != "":
		m.wb.SetTag(st.Tag)
	case st.View != "":
		m.wb.SetView(st.View)
	}
	m.wb.SetSort(viewfilter.SortField(st.SortBy), viewfilter.SortOrder(st.Order))
	if p := parsePane(st.Pane); p != paneDetail {
		m.pane = p
	}
}

func (m appModel) saveUIState() {
	if m.ui == nil {
		return
	}
	p := m.wb.Params()
	st := store.UIState{
		View:   p.View,
		Tag:    p.Tag.OrZero(),
		SortBy: string(p.SortBy),
		Order:  string(p.Order),
		Pane:   m.pane.String(),
	}
	if err := m.ui.SaveUIState(context.Background(), st); err != nil {
		m.log.Warn("save ui state", "err", err)
	}
}

// refresh re-derives everything shown from the workbench.
func (m *appModel) refresh() {
	meta := m.wb.Metadata()
	m.sidebar = buildSidebar(m.wb.Counts(), meta.AllLists(), meta.Tags(), meta.TagColor)
	if m.sideIdx >= len(m.sidebar) {
		m.sideIdx = len(m.sidebar) - 1
	}

	keep := ""
	if t, ok := selectedTask(m.tasks); ok {
		keep = t.ID
	}
	if id := m.wb.SelectedID(); id != "" {
		keep = id
	}
	visible := m.wb.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, taskItem{task: t})
	}
	m.tasks.SetItems(items)
	selectTaskByID(&m.tasks, keep)
	m.tasks.SetDelegate(newTaskRowDelegate(model.DayOf(m.wb.Now()), meta.TagColor, m.pane == paneList))

	if m.wb.Mode() == selection.Idle {
		m.editing = false
		if m.pane == paneDetail {
			m.pane = paneList
		}
	}
	if !m.editing {
		m.syncForm()
	}
	m.resize()
}

// syncForm copies the draft into the text inputs.
func (m *appModel) syncForm() {
	d, ok := m.wb.Draft()
	if !ok {
		m.title.SetValue("")
		m.desc.SetValue("")
		m.tagIdx, m.subIdx = 0, 0
		return
	}
	m.title.SetValue(d.Title)
	m.desc.SetValue(d.Description)
	if m.subIdx >= len(d.Subtasks) {
		m.subIdx = max(len(d.Subtasks)-1, 0)
	}
}

func (m *appModel) commitEdits() {
	title, desc := m.title.Value(), m.desc.Value()
	m.wb.EditDraft(func(d *selection.Draft) {
		d.Title = title
		d.Description = desc
	})
}

func (m *appModel) resize() {
	_, listW, detailW := m.paneWidths()
	h := m.bodyHeight()
	m.tasks.SetSize(listW-2, h-2)
	m.title.Width = max(detailW-14, 10)
	m.desc.SetWidth(max(detailW-4, 10))
}

func (m appModel) bodyHeight() int {
	h := m.height - headerLines - footerLines
	if m.prompt != promptNone {
		h--
	}
	return max(h, 8)
}

// paneWidths splits the screen: fixed sidebar, list, and a detail panel that
// takes about 40% of the remainder.
func (m appModel) paneWidths() (side, lst, detail int) {
	w := max(m.width, 80)
	side = sidebarWidth
	rest := w - side
	detail = rest * 2 / 5
	lst = rest - detail
	return side, lst, detail
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	if m.firstLoad {
		msg := m.spinner.View() + " Loading tasks..."
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	sideW, listW, detailW := m.paneWidths()
	h := m.bodyHeight()
	p := m.wb.Params()

	box := func(content string, w int, focused bool) string {
		edge := colorBorder
		if focused {
			edge = colorFocusEdge
		}
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(edge).
			Width(w - 2).
			Height(h - 2).
			MaxHeight(h).
			Render(content)
	}

	side := renderSidebar(m.sidebar, m.sideIdx, m.pane == paneSidebar, p, m.wb.Metadata().Degraded(), sideW-2)
	listBody := m.tasks.View()
	if len(m.tasks.Items()) == 0 {
		empty := "No tasks found. Press n to create one."
		if m.wb.LoadFailed() {
			empty = "Could not load tasks. Press r to retry."
		}
		listBody = styleMuted().Render(empty)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		box(side, sideW, m.pane == paneSidebar),
		box(listBody, listW, m.pane == paneList),
		box(m.renderDetail(detailW-4), detailW, m.pane == paneDetail),
	)

	parts := []string{m.renderHeader(p), body}
	if m.prompt != promptNone {
		parts = append(parts, m.renderPrompt())
	}
	parts = append(parts, m.renderFooter())
	out := strings.Join(parts, "\n")

	if toasts := renderToasts(m.toasts, m.width/2); toasts != "" {
		out = overlayBottomRight(out, toasts, m.width)
	}
	return out
}

func (m appModel) renderHeader(p viewfilter.Params) string {
	title := lipgloss.NewStyle().Bold(true).Render("taskdeck")
	var bits []string
	switch {
	case p.Tag.Present():
		bits = append(bits, "#"+p.Tag.OrZero())
	case p.View != "":
		bits = append(bits, p.View)
	}
	if q := strings.TrimSpace(p.Query); q != "" {
		bits = append(bits, "search: "+q)
	}
	if p.SortBy != viewfilter.SortNone {
		bits = append(bits, "sort: "+string(p.SortBy)+" "+string(p.Order))
	}
	bits = append(bits, pluralCount(len(m.tasks.Items()), "task", "tasks"))
	return title + "  " + styleMuted().Render(strings.Join(bits, "  ·  ")) + "\n"
}

func (m appModel) renderFooter() string {
	var help string
	switch m.pane {
	case paneSidebar:
		help = "enter: select  a: add list  t: add tag  x: delete  tab: next pane"
	case paneList:
		help = "enter: open  space: done  d: delete  n: new  p: quick add  /: search  s: sort  r: reload  q: quit"
	case paneDetail:
		help = "↑/↓: field  enter: edit  ←/→: change  space: toggle  ctrl+s: save  d: delete  esc: close"
	}
	return styleMuted().Render(help)
}

func (m appModel) renderPrompt() string {
	if m.prompt == promptConfirm {
		return lipgloss.NewStyle().Foreground(colorDanger).Bold(true).
			Render("Delete " + m.confirm.label + "? (y/n)")
	}
	return m.input.View()
}

// overlayBottomRight replaces the last lines of base with the overlay,
// right-aligned within width.
func overlayBottomRight(base, overlay string, width int) string {
	lines := strings.Split(base, "\n")
	ov := strings.Split(overlay, "\n")
	start := len(lines) - footerLines - len(ov)
	if start < 0 {
		start = 0
	}
	for i, o := range ov {
		if start+i >= len(lines) {
			break
		}
		lines[start+i] = lipgloss.PlaceHorizontal(width, lipgloss.Right, o)
	}
	return strings.Join(lines, "\n")
}

func pluralCount(n int, one, many string) string {
	return strconv.Itoa(n) + " " + plural(n, one, many)
}

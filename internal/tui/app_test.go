package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"taskdeck/internal/api"
	"taskdeck/internal/metadata"
	"taskdeck/internal/model"
	"taskdeck/internal/notify"
	"taskdeck/internal/selection"
	"taskdeck/internal/server"
	"taskdeck/internal/store"
	"taskdeck/internal/viewfilter"
	"taskdeck/internal/workbench"
)

var fixedNow = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.Local)

type appHarness struct {
	wb     *workbench.Workbench
	client *api.Client
	db     *store.DB
	notes  *notify.Hub
}

func newAppHarness(t *testing.T) *appHarness {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)

	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	srv, err := server.New(db, server.Config{Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := api.New(ts.URL)
	notes := notify.New(notify.WithClock(notify.NewManualClock(fixedNow)))
	wb := workbench.New(client,
		workbench.WithNotifier(notes),
		workbench.WithMetadata(metadata.New(client)),
		workbench.WithNow(func() time.Time { return fixedNow }),
	)
	return &appHarness{wb: wb, client: client, db: db, notes: notes}
}

// start builds a sized model and completes the first load.
func (h *appHarness) start(t *testing.T) appModel {
	t.Helper()
	m := newAppModel(context.Background(), h.wb, Options{})
	m = step(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if !m.firstLoad {
		t.Fatalf("model should wait for the first load")
	}
	m = step(t, m, m.loadCmd()())
	if m.firstLoad {
		t.Fatalf("first load should be done")
	}
	return m
}

func (h *appHarness) lastMessage() string {
	active := h.notes.Active()
	if len(active) == 0 {
		return ""
	}
	return active[len(active)-1].Message
}

func step(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(appModel)
}

// press sends one key and runs the workbench command it returns, if any.
func press(t *testing.T, m appModel, k string) appModel {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	m = next.(appModel)
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case actionDoneMsg, loadDoneMsg:
		m = step(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(appModel)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *appHarness) createTask(t *testing.T, body model.TaskCreate) model.Task {
	t.Helper()
	task, err := h.client.CreateTask(context.Background(), body)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestApp_FirstLoadShowsSpinnerThenPanes(t *testing.T) {
	h := newAppHarness(t)
	if _, err := server.Seed(context.Background(), h.db, fixedNow); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m := newAppModel(context.Background(), h.wb, Options{})
	m = step(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if !strings.Contains(m.View(), "Loading tasks...") {
		t.Fatalf("expected loading screen")
	}

	m = step(t, m, m.loadCmd()())
	view := m.View()
	for _, want := range []string{"taskdeck", "Views", "Today", "Lists", "work", "No task selected."} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
	if got, want := len(m.tasks.Items()), len(h.wb.Visible()); got != want {
		t.Fatalf("list shows %d rows, workbench has %d visible", got, want)
	}
}

func TestApp_CreateTaskFromKeys(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "n")
	if m.pane != paneDetail || !m.editing || h.wb.Mode() != selection.Creating {
		t.Fatalf("expected title editing in detail pane, pane=%s editing=%v mode=%s", m.pane, m.editing, h.wb.Mode())
	}
	m = typeText(t, m, "Pay rent")
	m = press(t, m, "ctrl+s")

	if h.wb.Mode() != selection.Viewing {
		t.Fatalf("expected viewing after save, got %s", h.wb.Mode())
	}
	got, _ := h.wb.Selected()
	if got.Title != "Pay rent" {
		t.Fatalf("unexpected task %+v", got)
	}
	if msg := h.lastMessage(); msg != "Task created successfully" {
		t.Fatalf("unexpected notification %q", msg)
	}
	if m.editing {
		t.Fatalf("save should end editing")
	}
}

func TestApp_EmptyTitleStaysInForm(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "n")
	m = press(t, m, "ctrl+s")
	if h.wb.Mode() != selection.Creating || m.pane != paneDetail {
		t.Fatalf("form should stay open, mode=%s pane=%s", h.wb.Mode(), m.pane)
	}
	if msg := h.lastMessage(); msg != "Task title is required" {
		t.Fatalf("unexpected notification %q", msg)
	}
}

func TestApp_ToggleDoneWithSpace(t *testing.T) {
	h := newAppHarness(t)
	task := h.createTask(t, model.TaskCreate{Title: "Water plants"})
	h.wb.SetView(viewfilter.ViewAll)
	m := h.start(t)

	m = press(t, m, "space")
	tasks := h.wb.Tasks()
	if len(tasks) != 1 || tasks[0].ID != task.ID || tasks[0].Status != model.StatusDone {
		t.Fatalf("expected task done, got %+v", tasks)
	}

	press(t, m, "space")
	if st := h.wb.Tasks()[0].Status; st != model.StatusTodo {
		t.Fatalf("second toggle should reopen, got %s", st)
	}
}

func TestApp_DeleteAsksFirst(t *testing.T) {
	h := newAppHarness(t)
	h.createTask(t, model.TaskCreate{Title: "Old idea"})
	h.wb.SetView(viewfilter.ViewAll)
	m := h.start(t)

	m = press(t, m, "d")
	if m.prompt != promptConfirm || !strings.Contains(m.View(), "Delete task 'Old idea'? (y/n)") {
		t.Fatalf("expected confirmation prompt")
	}
	m = press(t, m, "n")
	if m.prompt != promptNone || len(h.wb.Tasks()) != 1 {
		t.Fatalf("cancel should keep the task")
	}

	m = press(t, m, "d")
	m = press(t, m, "y")
	if len(h.wb.Tasks()) != 0 {
		t.Fatalf("task should be gone, got %+v", h.wb.Tasks())
	}
	if msg := h.lastMessage(); msg != "Task deleted successfully" {
		t.Fatalf("unexpected notification %q", msg)
	}
}

func TestApp_SearchFiltersWhileTyping(t *testing.T) {
	h := newAppHarness(t)
	h.createTask(t, model.TaskCreate{Title: "Buy milk"})
	h.createTask(t, model.TaskCreate{Title: "Book dentist"})
	h.wb.SetView(viewfilter.ViewAll)
	m := h.start(t)

	m = press(t, m, "/")
	m = typeText(t, m, "MILK")
	if n := len(m.tasks.Items()); n != 1 {
		t.Fatalf("expected one match, got %d", n)
	}
	m = press(t, m, "esc")
	if h.wb.Params().Query != "" || len(m.tasks.Items()) != 2 {
		t.Fatalf("esc should clear the search")
	}
}

func TestApp_QuickAddOpensParsedDraft(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "p")
	m = typeText(t, m, "Buy milk tomorrow high priority")
	m = press(t, m, "enter")

	if h.wb.Mode() != selection.Creating || m.pane != paneDetail {
		t.Fatalf("expected parsed draft in the form, mode=%s pane=%s", h.wb.Mode(), m.pane)
	}
	d, _ := h.wb.Draft()
	if d.Title != "Buy milk" || d.Priority != model.PriorityHigh || d.DueDate != "2024-01-16" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if m.title.Value() != "Buy milk" {
		t.Fatalf("form not synced, title=%q", m.title.Value())
	}
}

func TestApp_DetailFieldsCycle(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "n")
	m = press(t, m, "esc")
	for range int(fieldPriority) {
		m = press(t, m, "down")
	}
	m = press(t, m, "right")
	if d, _ := h.wb.Draft(); d.Priority != model.PriorityHigh {
		t.Fatalf("expected high, got %s", d.Priority)
	}
	m = press(t, m, "right")
	if d, _ := h.wb.Draft(); d.Priority != model.PriorityLow {
		t.Fatalf("priority should wrap to low, got %s", d.Priority)
	}

	m = press(t, m, "down")
	m = press(t, m, "enter")
	if m.prompt != promptDue {
		t.Fatalf("enter on due should open the date prompt")
	}
	m = typeText(t, m, "2024-02-30")
	m = press(t, m, "enter")
	if d, _ := h.wb.Draft(); d.DueDate != "" {
		t.Fatalf("invalid date should be rejected, got %q", d.DueDate)
	}
	if msg := h.lastMessage(); msg != "Due date must be a valid YYYY-MM-DD date" {
		t.Fatalf("unexpected notification %q", msg)
	}

	m = press(t, m, "enter")
	m = typeText(t, m, "2024-02-01")
	m = press(t, m, "enter")
	if d, _ := h.wb.Draft(); d.DueDate != "2024-02-01" {
		t.Fatalf("due not set, got %q", d.DueDate)
	}

	m = press(t, m, "a")
	m = typeText(t, m, "call landlord")
	m = press(t, m, "enter")
	d, _ := h.wb.Draft()
	if len(d.Subtasks) != 1 || m.field != fieldSubtasks {
		t.Fatalf("expected one subtask and focus on it, got %+v field=%d", d.Subtasks, m.field)
	}
	m = press(t, m, "space")
	if d, _ := h.wb.Draft(); !d.Subtasks[0].Completed {
		t.Fatalf("space should complete the subtask")
	}
	m = press(t, m, "x")
	if d, _ := h.wb.Draft(); len(d.Subtasks) != 0 {
		t.Fatalf("x should remove the subtask")
	}
}

func TestApp_SidebarAddsListAndFilters(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "shift+tab")
	if m.pane != paneSidebar {
		t.Fatalf("expected sidebar, got %s", m.pane)
	}
	m = press(t, m, "a")
	m = typeText(t, m, "errands")
	m = press(t, m, "enter")
	if !h.wb.Metadata().IsKnownList("errands") {
		t.Fatalf("list not added: %v", h.wb.Metadata().AllLists())
	}
	if msg := h.lastMessage(); msg != "List added successfully" {
		t.Fatalf("unexpected notification %q", msg)
	}

	idx := -1
	for i, e := range m.sidebar {
		if e.kind == entryList && e.name == "errands" {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("sidebar missing new list")
	}
	for m.sideIdx < idx {
		m = press(t, m, "down")
	}
	m = press(t, m, "enter")
	if h.wb.Params().View != "errands" || m.pane != paneList {
		t.Fatalf("enter should filter by the list, params=%+v pane=%s", h.wb.Params(), m.pane)
	}

	m = press(t, m, "n")
	if d, _ := h.wb.Draft(); d.List.OrZero() != "errands" {
		t.Fatalf("new task should be pre-filled with the list, got %+v", d.List)
	}
}

func TestApp_TabSkipsDetailWhenIdle(t *testing.T) {
	h := newAppHarness(t)
	m := h.start(t)

	m = press(t, m, "tab")
	if m.pane != paneSidebar {
		t.Fatalf("tab from list with nothing open should wrap to sidebar, got %s", m.pane)
	}
	m = press(t, m, "tab")
	if m.pane != paneList {
		t.Fatalf("expected list, got %s", m.pane)
	}
}

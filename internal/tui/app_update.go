package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/model"
	"taskdeck/internal/notify"
	"taskdeck/internal/selection"
	"taskdeck/internal/workbench"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.firstLoad {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		m.firstLoad = false
		m.refresh()
		return m, nil

	case actionDoneMsg:
		m.refresh()
		if msg.err == nil && msg.action == workbench.ActionParse {
			m.pane = paneDetail
			m.field = fieldTitle
			m.refresh()
		}
		return m, nil

	case toastsMsg:
		m.toasts = msg
		return m, m.feed.wait()

	case clockTickMsg:
		m.refresh()
		return m, clockTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInputs(msg)
}

// updateInputs forwards non-key messages (cursor blink) to whatever has focus.
func (m appModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.prompt != promptNone:
		m.input, cmd = m.input.Update(msg)
	case m.editing && m.field == fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case m.editing && m.field == fieldDescription:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.editing {
		return m.handleEditKey(msg)
	}
	if m.firstLoad {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextPane):
		m.cyclePane(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.cyclePane(-1)
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.openPrompt(promptSearch, "Search: ", m.wb.Params().Query)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Save) && m.wb.Mode() != selection.Idle:
		return m, m.saveCmd()
	}

	if m.pane != paneDetail {
		switch {
		case key.Matches(msg, m.keys.Sort):
			m.wb.CycleSort()
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.New):
			m.startCreate()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Parse):
			m.openPrompt(promptParse, "Quick add: ", "")
			m.input.Placeholder = "e.g. Call the bank tomorrow high priority #errands"
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Reload):
			return m, m.loadCmd()
		}
	}

	switch m.pane {
	case paneSidebar:
		return m.handleSidebarKey(msg)
	case paneDetail:
		return m.handleDetailKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m *appModel) cyclePane(delta int) {
	panes := []pane{paneSidebar, paneList}
	if m.wb.Mode() != selection.Idle {
		panes = append(panes, paneDetail)
	}
	i := slices.Index(panes, m.pane)
	m.pane = panes[(i+delta+len(panes))%len(panes)]
	m.refresh()
}

// startCreate opens an empty form. Leaving a viewed task is an explicit
// close first; create-new itself is only accepted from idle.
func (m *appModel) startCreate() {
	if m.wb.Mode() == selection.Viewing {
		m.wb.Close()
	}
	if !m.wb.CreateNew() {
		return
	}
	m.pane = paneDetail
	m.field = fieldTitle
	m.refresh()
	m.beginEdit()
}

func (m appModel) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sideIdx > 0 {
			m.sideIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.sideIdx < len(m.sidebar)-1 {
			m.sideIdx++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.sideIdx < 0 || m.sideIdx >= len(m.sidebar) {
			return m, nil
		}
		e := m.sidebar[m.sideIdx]
		switch e.kind {
		case entryTag:
			if m.wb.Params().Tag.OrZero() == e.name {
				m.wb.SetTag("")
			} else {
				m.wb.SetTag(e.name)
			}
		default:
			m.wb.SetView(e.name)
		}
		m.pane = paneList
		m.refresh()
	case key.Matches(msg, m.keys.AddList):
		m.openPrompt(promptAddList, "New list: ", "")
		return m, textinput.Blink
	case key.Matches(msg, m.keys.AddTag):
		m.openPrompt(promptAddTag, "New tag: ", "")
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Remove):
		if m.sideIdx < 0 || m.sideIdx >= len(m.sidebar) {
			return m, nil
		}
		e := m.sidebar[m.sideIdx]
		switch {
		case e.kind == entryList && !e.builtin:
			m.askConfirm(confirmTarget{kind: entryList, name: e.name, label: "list '" + e.name + "'"})
		case e.kind == entryTag:
			m.askConfirm(confirmTarget{kind: entryTag, name: e.name, label: "tag '" + e.name + "'"})
		}
	}
	return m, nil
}

func (m appModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if t, ok := selectedTask(m.tasks); ok && m.wb.Select(t.ID) {
			m.pane = paneDetail
			m.field = fieldTitle
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := selectedTask(m.tasks); ok && !m.wb.Busy(workbench.ActionSave) {
			wb, id := m.wb, t.ID
			return m, m.run(workbench.ActionSave, func(ctx context.Context) error { return wb.ToggleDone(ctx, id) })
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if t, ok := selectedTask(m.tasks); ok {
			m.askConfirm(confirmTarget{task: true, name: t.ID, label: "task '" + t.Title + "'"})
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.wb.Params().Query != "" {
			m.wb.SetQuery("")
			m.refresh()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m appModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, ok := m.wb.Draft()
	if !ok {
		m.pane = paneList
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.field > 0 {
			m.field--
		}
	case key.Matches(msg, m.keys.Down):
		if m.field < fieldCount-1 {
			m.field++
		}
	case key.Matches(msg, m.keys.Back):
		m.wb.Close()
		m.pane = paneList
		m.refresh()
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.wb.Selected(); ok {
			m.askConfirm(confirmTarget{task: true, name: t.ID, label: "task '" + t.Title + "'"})
		}
	case key.Matches(msg, m.keys.Add):
		m.openPrompt(promptSubtask, "New subtask: ", "")
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Remove) && m.field == fieldSubtasks:
		if m.subIdx < len(d.Subtasks) {
			id := d.Subtasks[m.subIdx].ID
			m.wb.EditDraft(func(d *selection.Draft) { d.RemoveSubtask(id) })
			m.refresh()
		}
	case key.Matches(msg, m.keys.Left):
		m.adjustField(d, -1)
	case key.Matches(msg, m.keys.Right):
		m.adjustField(d, 1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggleField(d)
	case key.Matches(msg, m.keys.Enter):
		switch m.field {
		case fieldTitle, fieldDescription:
			m.beginEdit()
			return m, textinput.Blink
		case fieldDue:
			m.openPrompt(promptDue, "Due (YYYY-MM-DD, empty clears): ", d.DueDate)
			return m, textinput.Blink
		case fieldTags, fieldSubtasks:
			m.toggleField(d)
		default:
			m.adjustField(d, 1)
		}
	}
	return m, nil
}

// adjustField cycles enum fields and moves the cursor inside tags/subtasks.
func (m *appModel) adjustField(d selection.Draft, delta int) {
	switch m.field {
	case fieldStatus:
		next := cycleValue(model.Statuses, d.Status, delta)
		m.wb.EditDraft(func(d *selection.Draft) { d.Status = next })
	case fieldPriority:
		next := cycleValue(model.Priorities, d.Priority, delta)
		m.wb.EditDraft(func(d *selection.Draft) { d.Priority = next })
	case fieldList:
		options := append([]string{""}, m.wb.Metadata().AllLists()...)
		next := cycleValue(options, d.List.OrZero(), delta)
		m.wb.EditDraft(func(d *selection.Draft) { d.List = model.OptString(next) })
	case fieldTags:
		if n := len(m.pickerTags(d)); n > 0 {
			m.tagIdx = (m.tagIdx + delta + n) % n
		}
	case fieldSubtasks:
		if n := len(d.Subtasks); n > 0 {
			m.subIdx = (m.subIdx + delta + n) % n
		}
	}
}

func (m *appModel) toggleField(d selection.Draft) {
	switch m.field {
	case fieldTags:
		tags := m.pickerTags(d)
		if m.tagIdx < len(tags) {
			name := tags[m.tagIdx]
			m.wb.EditDraft(func(d *selection.Draft) { d.ToggleTag(name) })
		}
	case fieldSubtasks:
		if m.subIdx < len(d.Subtasks) {
			id := d.Subtasks[m.subIdx].ID
			m.wb.EditDraft(func(d *selection.Draft) { d.ToggleSubtask(id) })
		}
	}
	m.refresh()
}

func (m *appModel) beginEdit() {
	m.editing = true
	switch m.field {
	case fieldDescription:
		m.title.Blur()
		m.desc.Focus()
	default:
		m.field = fieldTitle
		m.desc.Blur()
		m.title.Focus()
		m.title.CursorEnd()
	}
}

func (m *appModel) endEdit() {
	m.commitEdits()
	m.editing = false
	m.title.Blur()
	m.desc.Blur()
}

func (m appModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		m.endEdit()
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.Back):
		m.endEdit()
		return m, nil
	case msg.Type == tea.KeyEnter && m.field == fieldTitle:
		m.endEdit()
		return m, nil
	}
	var cmd tea.Cmd
	if m.field == fieldDescription {
		m.desc, cmd = m.desc.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

func (m appModel) saveCmd() tea.Cmd {
	if m.wb.Busy(workbench.ActionSave) {
		return nil
	}
	return m.run(workbench.ActionSave, m.wb.Save)
}

func (m *appModel) openPrompt(kind promptKind, prompt, value string) {
	m.prompt = kind
	m.input.Prompt = prompt
	m.input.Placeholder = ""
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.resize()
}

func (m *appModel) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
	m.resize()
}

func (m *appModel) askConfirm(t confirmTarget) {
	m.confirm = t
	m.prompt = promptConfirm
	m.resize()
}

func (m appModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt == promptConfirm {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			t := m.confirm
			m.confirm = confirmTarget{}
			m.closePrompt()
			return m, m.deleteCmd(t)
		case key.Matches(msg, m.keys.Cancel):
			m.confirm = confirmTarget{}
			m.closePrompt()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if m.prompt == promptSearch {
			m.wb.SetQuery("")
			m.refresh()
		}
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		kind, text := m.prompt, strings.TrimSpace(m.input.Value())
		m.closePrompt()
		return m, m.submitPrompt(kind, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptSearch {
		m.wb.SetQuery(m.input.Value())
		m.refresh()
	}
	return m, cmd
}

func (m *appModel) submitPrompt(kind promptKind, text string) tea.Cmd {
	wb := m.wb
	switch kind {
	case promptParse:
		if wb.Busy(workbench.ActionParse) {
			return nil
		}
		return m.run(workbench.ActionParse, func(ctx context.Context) error { return wb.Parse(ctx, text) })
	case promptAddList:
		return m.run(workbench.ActionList, func(ctx context.Context) error {
			_, err := wb.AddList(ctx, text)
			return err
		})
	case promptAddTag:
		return m.run(workbench.ActionTag, func(ctx context.Context) error {
			_, err := wb.AddTag(ctx, text)
			return err
		})
	case promptSubtask:
		if text != "" {
			wb.EditDraft(func(d *selection.Draft) { d.AddSubtask(text) })
			m.field = fieldSubtasks
			if d, ok := wb.Draft(); ok {
				m.subIdx = len(d.Subtasks) - 1
			}
			m.refresh()
		}
	case promptDue:
		due := ""
		if text != "" {
			day, ok := model.ParseDay(text)
			if !ok || len(text) != len("2006-01-02") {
				wb.Notifier().Publish("Due date must be a valid YYYY-MM-DD date", notify.Error)
				return nil
			}
			due = day.String()
		}
		wb.EditDraft(func(d *selection.Draft) { d.DueDate = due })
		m.refresh()
	}
	return nil
}

func (m appModel) deleteCmd(t confirmTarget) tea.Cmd {
	wb, name := m.wb, t.name
	switch {
	case t.task:
		if wb.Busy(workbench.ActionDelete) {
			return nil
		}
		return m.run(workbench.ActionDelete, func(ctx context.Context) error { return wb.Delete(ctx, name) })
	case t.kind == entryList:
		return m.run(workbench.ActionList, func(ctx context.Context) error { return wb.DeleteList(ctx, name) })
	case t.kind == entryTag:
		return m.run(workbench.ActionTag, func(ctx context.Context) error { return wb.DeleteTag(ctx, name) })
	}
	return nil
}

func cycleValue[T comparable](values []T, cur T, delta int) T {
	i := slices.Index(values, cur)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[((i+delta)%n+n)%n]
}

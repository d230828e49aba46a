// Package workbench is the controller behind every client surface. It owns
// the task snapshot, the metadata cache, the selection machine and the view
// parameters, and turns every failed action into a notification.
//
// Mutations are never applied optimistically: a successful request is
// followed by a full reload and the selection is reconciled against it.
package workbench

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/metadata"
	"taskdeck/internal/model"
	"taskdeck/internal/notify"
	"taskdeck/internal/selection"
	"taskdeck/internal/taskstore"
	"taskdeck/internal/viewfilter"
)

// ErrEmptyText is returned by Parse for blank input.
var ErrEmptyText = errors.New("nothing to parse")

// Backend is the REST surface the workbench drives. *api.Client satisfies it.
type Backend interface {
	metadata.Backend
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, body model.TaskCreate) (model.Task, error)
	UpdateTask(ctx context.Context, id string, body model.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ParseNaturalLanguage(ctx context.Context, text string) (model.ParsedTask, error)
}

// Action names a user action that shows its own busy state.
type Action string

const (
	ActionLoad   Action = "load"
	ActionSave   Action = "save"
	ActionDelete Action = "delete"
	ActionParse  Action = "parse"
	ActionList   Action = "list"
	ActionTag    Action = "tag"
)

type Option func(*Workbench)

func WithNotifier(h *notify.Hub) Option {
	return func(w *Workbench) {
		if h != nil {
			w.notes = h
		}
	}
}

func WithMetadata(m *metadata.Cache) Option {
	return func(w *Workbench) {
		if m != nil {
			w.meta = m
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workbench) {
		if l != nil {
			w.log = l
		}
	}
}

// WithNow pins the clock used for day boundaries.
func WithNow(now func() time.Time) Option {
	return func(w *Workbench) {
		if now != nil {
			w.now = now
		}
	}
}

// WithDefaultView sets the view selected on start and after its list is deleted.
func WithDefaultView(v string) Option {
	return func(w *Workbench) {
		w.defaultView = strings.TrimSpace(v)
	}
}

type Workbench struct {
	backend     Backend
	tasks       *taskstore.Store
	meta        *metadata.Cache
	notes       *notify.Hub
	log         *slog.Logger
	now         func() time.Time
	defaultView string

	mu         sync.Mutex
	sel        *selection.Machine
	params     viewfilter.Params
	busy       map[Action]int
	loading    bool
	loadFailed bool
}

func New(b Backend, opts ...Option) *Workbench {
	w := &Workbench{
		backend:     b,
		tasks:       taskstore.New(),
		log:         slog.New(slog.DiscardHandler),
		now:         time.Now,
		defaultView: viewfilter.ViewToday,
		sel:         selection.New(),
		busy:        map[Action]int{},
	}
	for _, o := range opts {
		o(w)
	}
	if w.meta == nil {
		w.meta = metadata.New(b, metadata.WithLogger(w.log))
	}
	if w.notes == nil {
		w.notes = notify.New()
	}
	w.params = viewfilter.Params{View: w.defaultView, Order: viewfilter.Asc}
	return w
}

func (w *Workbench) Notifier() *notify.Hub     { return w.notes }
func (w *Workbench) Metadata() *metadata.Cache { return w.meta }

// Load fetches tasks and metadata. The loading flag is only raised while no
// snapshot has ever been loaded. On failure the previous snapshot stays.
func (w *Workbench) Load(ctx context.Context) error {
	first := !w.tasks.Loaded()
	done := w.begin(ActionLoad)
	defer done()
	if first {
		w.mu.Lock()
		w.loading = true
		w.mu.Unlock()
	}

	err := w.tasks.Load(ctx, w.backend)

	w.mu.Lock()
	w.loading = false
	if err == nil {
		w.loadFailed = false
		w.sel.Reconcile(w.tasks.Tasks())
	} else if first {
		w.loadFailed = true
	}
	w.mu.Unlock()

	if merr := w.meta.Refresh(ctx); merr != nil {
		w.log.Warn("metadata refresh failed", "kind", errorKind(merr), "err", merr, "degraded", w.meta.Degraded())
	}
	if err != nil {
		w.fail(ActionLoad, err, "Failed to load tasks. Please check if backend is running.")
		return err
	}
	w.log.Debug("tasks loaded", "count", w.tasks.Len(), "revision", w.tasks.Revision())
	return nil
}

// reload refreshes the snapshot after a mutation and reconciles the selection.
func (w *Workbench) reload(ctx context.Context) bool {
	if err := w.tasks.Load(ctx, w.backend); err != nil {
		w.log.Warn("reload after mutation failed", "kind", errorKind(err), "err", err)
		return false
	}
	w.mu.Lock()
	w.sel.Reconcile(w.tasks.Tasks())
	w.mu.Unlock()
	return true
}

// Params returns the current view parameters.
func (w *Workbench) Params() viewfilter.Params {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.params
}

// SetView selects a view and clears any tag filter.
func (w *Workbench) SetView(view string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.params.View = strings.TrimSpace(view)
	w.params.Tag = model.None[string]()
}

// SetTag filters by tag and clears the view so the tag drives the list.
// An empty tag goes back to the default view.
func (w *Workbench) SetTag(tag string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tag = strings.TrimSpace(tag)
	if tag == "" {
		w.params.Tag = model.None[string]()
		w.params.View = w.defaultView
		return
	}
	w.params.Tag = model.Some(tag)
	w.params.View = viewfilter.ViewAll
}

func (w *Workbench) SetQuery(q string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.params.Query = q
}

func (w *Workbench) SetSort(by viewfilter.SortField, order viewfilter.SortOrder) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if order != viewfilter.Desc {
		order = viewfilter.Asc
	}
	w.params.SortBy = by
	w.params.Order = order
}

// CycleSort steps none, priority asc, priority desc, status asc, status desc.
func (w *Workbench) CycleSort() (viewfilter.SortField, viewfilter.SortOrder) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &w.params
	switch {
	case p.SortBy == viewfilter.SortNone:
		p.SortBy, p.Order = viewfilter.SortPriority, viewfilter.Asc
	case p.SortBy == viewfilter.SortPriority && p.Order == viewfilter.Asc:
		p.Order = viewfilter.Desc
	case p.SortBy == viewfilter.SortPriority:
		p.SortBy, p.Order = viewfilter.SortStatus, viewfilter.Asc
	case p.SortBy == viewfilter.SortStatus && p.Order == viewfilter.Asc:
		p.Order = viewfilter.Desc
	default:
		p.SortBy, p.Order = viewfilter.SortNone, viewfilter.Asc
	}
	return p.SortBy, p.Order
}

// Visible recomputes the displayed tasks from the current snapshot.
func (w *Workbench) Visible() []model.Task {
	return viewfilter.Apply(w.tasks.Tasks(), w.Params(), w.now())
}

// Counts returns badge numbers for every built-in and custom list.
func (w *Workbench) Counts() viewfilter.Counts {
	return viewfilter.CountBuckets(w.tasks.Tasks(), w.meta.AllLists(), w.now())
}

// Tasks returns the full snapshot in server order.
func (w *Workbench) Tasks() []model.Task { return w.tasks.Tasks() }

func (w *Workbench) Now() time.Time { return w.now() }

// Loaded reports whether any snapshot has been fetched.
func (w *Workbench) Loaded() bool { return w.tasks.Loaded() }

// Loading is true only during the first load.
func (w *Workbench) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// LoadFailed reports that no snapshot could be fetched yet.
func (w *Workbench) LoadFailed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadFailed
}

func (w *Workbench) Busy(a Action) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy[a] > 0
}

func (w *Workbench) begin(a Action) func() {
	w.mu.Lock()
	w.busy[a]++
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		w.busy[a]--
		w.mu.Unlock()
	}
}

// Mode reports the detail panel mode.
func (w *Workbench) Mode() selection.Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.Mode()
}

// SelectedID is the viewed task id or "".
func (w *Workbench) SelectedID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.TaskID()
}

// Selected returns the task the detail panel was seeded from.
func (w *Workbench) Selected() (model.Task, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.Loaded()
}

// Draft returns a copy of the edit buffer.
func (w *Workbench) Draft() (selection.Draft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.sel.Draft()
	if d == nil {
		return selection.Draft{}, false
	}
	return d.Clone(), true
}

// EditDraft applies fn to the live edit buffer. It reports false when Idle.
func (w *Workbench) EditDraft(fn func(*selection.Draft)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.sel.Draft()
	if d == nil {
		return false
	}
	fn(d)
	return true
}

// Select views the task with id. It reports false when id is not in the snapshot.
func (w *Workbench) Select(id string) bool {
	t, ok := w.tasks.Find(id)
	if !ok {
		return false
	}
	w.mu.Lock()
	w.sel.Select(t)
	w.mu.Unlock()
	return true
}

// CreateNew opens the create form. When a known list is the current view
// the draft starts in that list.
func (w *Workbench) CreateNew() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	list := model.None[string]()
	if v := w.params.View; !viewfilter.IsReservedView(v) && w.meta.IsKnownList(v) {
		list = model.Some(model.NormalizeListName(v))
	}
	return w.sel.CreateNew(list)
}

func (w *Workbench) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Close()
}

// Save submits the draft. Local validation failures and request failures
// both leave the draft as it was.
func (w *Workbench) Save(ctx context.Context) error {
	done := w.begin(ActionSave)
	defer done()

	w.mu.Lock()
	plan, err := w.sel.PlanSave()
	w.mu.Unlock()
	if err != nil {
		w.fail(ActionSave, err, "Failed to save task")
		return err
	}

	switch plan.Action {
	case selection.Create:
		created, err := w.backend.CreateTask(ctx, plan.Create)
		if err != nil {
			w.fail(ActionSave, err, "Failed to save task")
			return err
		}
		w.mu.Lock()
		if w.sel.Mode() == selection.Creating {
			w.sel.Created(created)
		}
		w.mu.Unlock()
		w.reload(ctx)
		w.notes.Publish("Task created successfully", notify.Success)
		w.log.Info("task created", "id", created.ID)
	case selection.Update:
		updated, err := w.backend.UpdateTask(ctx, plan.TaskID, plan.Update)
		if err != nil {
			w.fail(ActionSave, err, "Failed to save task")
			return err
		}
		if !w.reload(ctx) {
			w.mu.Lock()
			if w.sel.TaskID() == updated.ID {
				w.sel.Select(updated)
			}
			w.mu.Unlock()
		}
		w.notes.Publish("Task updated successfully", notify.Success)
		w.log.Info("task updated", "id", plan.TaskID, "fields", plan.Update.Fields())
	}
	return nil
}

// ToggleDone flips a task between done and todo straight from the list,
// bypassing the draft.
func (w *Workbench) ToggleDone(ctx context.Context, id string) error {
	t, ok := w.tasks.Find(id)
	if !ok {
		err := api.NotFoundError{Kind: "Task", ID: id}
		w.fail(ActionSave, err, "Failed to update task")
		return err
	}
	done := w.begin(ActionSave)
	defer done()

	status := model.StatusDone
	if t.Status == model.StatusDone {
		status = model.StatusTodo
	}
	if _, err := w.backend.UpdateTask(ctx, id, model.TaskUpdate{Status: &status}); err != nil {
		w.fail(ActionSave, err, "Failed to update task")
		return err
	}
	w.reload(ctx)
	w.log.Info("task status toggled", "id", id, "status", string(status))
	return nil
}

// Delete removes a task. Callers confirm with the user first.
func (w *Workbench) Delete(ctx context.Context, id string) error {
	done := w.begin(ActionDelete)
	defer done()

	if err := w.backend.DeleteTask(ctx, id); err != nil {
		w.fail(ActionDelete, err, "Failed to delete task")
		return err
	}
	w.mu.Lock()
	w.sel.Deleted(id)
	w.mu.Unlock()
	w.reload(ctx)
	w.notes.Publish("Task deleted successfully", notify.Success)
	w.log.Info("task deleted", "id", id)
	return nil
}

// Parse fills the draft from free text, opening the create form when
// nothing is selected. Nothing is saved.
func (w *Workbench) Parse(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		w.fail(ActionParse, ErrEmptyText, "Please enter a task description")
		return ErrEmptyText
	}
	done := w.begin(ActionParse)
	defer done()

	parsed, err := w.backend.ParseNaturalLanguage(ctx, text)
	if err != nil {
		w.fail(ActionParse, err, "Failed to parse task. Please try again.")
		return err
	}
	w.mu.Lock()
	if w.sel.Mode() == selection.Idle {
		list := model.None[string]()
		if v := w.params.View; !viewfilter.IsReservedView(v) && w.meta.IsKnownList(v) {
			list = model.Some(model.NormalizeListName(v))
		}
		w.sel.CreateNew(list)
	}
	w.sel.Draft().ApplyParsed(parsed)
	w.mu.Unlock()
	w.notes.Publish("Task parsed successfully! Review and save.", notify.Success)
	return nil
}

func (w *Workbench) AddList(ctx context.Context, name string) (string, error) {
	done := w.begin(ActionList)
	defer done()
	created, err := w.meta.CreateList(ctx, name)
	if err != nil {
		w.fail(ActionList, err, "Failed to add list")
		return "", err
	}
	w.notes.Publish("List added successfully", notify.Success)
	return created, nil
}

// DeleteList also moves off the deleted list's view.
func (w *Workbench) DeleteList(ctx context.Context, name string) error {
	done := w.begin(ActionList)
	defer done()
	if err := w.meta.DeleteList(ctx, name); err != nil {
		w.fail(ActionList, err, "Failed to delete list")
		return err
	}
	w.mu.Lock()
	if w.params.View == model.NormalizeListName(name) {
		w.params.View = w.defaultView
	}
	w.mu.Unlock()
	w.notes.Publish("List deleted successfully", notify.Success)
	return nil
}

func (w *Workbench) AddTag(ctx context.Context, name string) (string, error) {
	done := w.begin(ActionTag)
	defer done()
	created, err := w.meta.CreateTag(ctx, name)
	if err != nil {
		w.fail(ActionTag, err, "Failed to add tag")
		return "", err
	}
	w.notes.Publish("Tag added successfully", notify.Success)
	return created, nil
}

// DeleteTag also clears the tag filter when it pointed at name.
func (w *Workbench) DeleteTag(ctx context.Context, name string) error {
	done := w.begin(ActionTag)
	defer done()
	if err := w.meta.DeleteTag(ctx, name); err != nil {
		w.fail(ActionTag, err, "Failed to delete tag")
		return err
	}
	w.mu.Lock()
	if tag, ok := w.params.Tag.Get(); ok && tag == strings.TrimSpace(name) {
		w.params.Tag = model.None[string]()
		w.params.View = w.defaultView
	}
	w.mu.Unlock()
	w.notes.Publish("Tag deleted successfully", notify.Success)
	return nil
}

func (w *Workbench) fail(a Action, err error, fallback string) {
	msg := userMessage(err, fallback)
	w.log.Warn("action failed", "action", string(a), "kind", errorKind(err), "err", err)
	w.notes.Publish(msg, notify.Error)
}

var _ Backend = (*api.Client)(nil)

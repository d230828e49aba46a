package selection

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"taskdeck/internal/model"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
)

// Draft is the local edit buffer behind the detail panel.
//
// DueDate holds a calendar day as YYYY-MM-DD, or "" for none.
type Draft struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	DueDate     string
	List        model.Opt[string]
	Tags        []string
	Subtasks    []model.Subtask
}

// NewDraft returns the empty defaults used in create mode.
func NewDraft(list model.Opt[string]) Draft {
	return Draft{
		Status:   model.StatusTodo,
		Priority: model.PriorityMedium,
		List:     list,
	}
}

// DraftFromTask seeds a draft from a loaded task. Slices are copied so edits
// never reach the store snapshot.
func DraftFromTask(t model.Task) Draft {
	d := Draft{
		Title:       t.Title,
		Description: t.Description.OrZero(),
		Status:      t.Status,
		Priority:    t.Priority,
		List:        t.List,
		Tags:        slices.Clone(t.Tags),
		Subtasks:    slices.Clone(t.Subtasks),
	}
	if day, ok := t.Due(); ok {
		d.DueDate = day.String()
	}
	return d
}

// Clone returns a copy that shares no slices with d.
func (d Draft) Clone() Draft {
	d.Tags = slices.Clone(d.Tags)
	d.Subtasks = slices.Clone(d.Subtasks)
	return d
}

func (d *Draft) AddSubtask(title string) string {
	id := uuid.NewString()
	d.Subtasks = append(d.Subtasks, model.Subtask{ID: id, Title: title})
	return id
}

func (d *Draft) ToggleSubtask(id string) bool {
	for i := range d.Subtasks {
		if d.Subtasks[i].ID == id {
			d.Subtasks[i].Completed = !d.Subtasks[i].Completed
			return true
		}
	}
	return false
}

func (d *Draft) RemoveSubtask(id string) bool {
	for i := range d.Subtasks {
		if d.Subtasks[i].ID == id {
			d.Subtasks = slices.Delete(d.Subtasks, i, i+1)
			return true
		}
	}
	return false
}

// ToggleTag adds name if missing, otherwise removes it.
func (d *Draft) ToggleTag(name string) {
	if i := slices.Index(d.Tags, name); i >= 0 {
		d.Tags = slices.Delete(d.Tags, i, i+1)
		return
	}
	d.Tags = append(d.Tags, name)
}

// ApplyParsed fills the draft from a natural-language parse result. The due
// date is reduced to its calendar day without any zone conversion.
func (d *Draft) ApplyParsed(p model.ParsedTask) {
	if title := strings.TrimSpace(p.Title); title != "" {
		d.Title = title
	}
	if desc, ok := p.Description.Get(); ok {
		d.Description = desc
	}
	if p.Status.Valid() {
		d.Status = p.Status
	}
	if p.Priority.Valid() {
		d.Priority = p.Priority
	}
	if raw, ok := p.DueDate.Get(); ok {
		if day, ok := model.ParseDay(raw); ok {
			d.DueDate = day.String()
		}
	}
	if list, ok := p.List.Get(); ok && strings.TrimSpace(list) != "" {
		d.List = model.Some(model.NormalizeListName(list))
	}
}

// CreateBody validates the draft and builds the full creation request.
func (d Draft) CreateBody() (model.TaskCreate, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.TaskCreate{}, ErrTitleRequired
	}
	due, err := d.dueOpt()
	if err != nil {
		return model.TaskCreate{}, err
	}
	body := model.TaskCreate{
		Title:       title,
		Description: model.OptString(strings.TrimSpace(d.Description)),
		Status:      orStatus(d.Status),
		Priority:    orPriority(d.Priority),
		DueDate:     due,
		List:        d.List,
		Subtasks:    cleanSubtasks(d.Subtasks),
		Tags:        dedupe(d.Tags),
	}
	return body, nil
}

// UpdateBody diffs the draft against the loaded task and returns only the
// changed fields. An empty result means there is nothing to send. Both sides
// are normalized the same way, so stored padding or an empty description
// never counts as an edit.
func (d Draft) UpdateBody(base model.Task) (model.TaskUpdate, error) {
	var u model.TaskUpdate

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return u, ErrTitleRequired
	}
	if title != strings.TrimSpace(base.Title) {
		u.Title = &title
	}

	desc := model.OptString(strings.TrimSpace(d.Description))
	if !model.EqualOpt(desc, model.OptString(strings.TrimSpace(base.Description.OrZero()))) {
		u.Description = &desc
	}

	if d.Status != base.Status && d.Status.Valid() {
		s := d.Status
		u.Status = &s
	}
	if d.Priority != base.Priority && d.Priority.Valid() {
		p := d.Priority
		u.Priority = &p
	}

	due, err := d.dueOpt()
	if err != nil {
		return model.TaskUpdate{}, err
	}
	var baseDue model.Opt[string]
	if day, ok := base.Due(); ok {
		baseDue = model.Some(day.String())
	}
	if !model.EqualOpt(due, baseDue) {
		u.DueDate = &due
	}

	if !model.EqualOpt(d.List, base.List) {
		list := d.List
		u.List = &list
	}

	if tags := dedupe(d.Tags); !sameSet(tags, base.Tags) {
		if tags == nil {
			tags = []string{}
		}
		u.Tags = &tags
	}

	if subs := cleanSubtasks(d.Subtasks); !slices.Equal(subs, cleanSubtasks(base.Subtasks)) {
		if subs == nil {
			subs = []model.Subtask{}
		}
		u.Subtasks = &subs
	}
	return u, nil
}

func (d Draft) dueOpt() (model.Opt[string], error) {
	raw := strings.TrimSpace(d.DueDate)
	if raw == "" {
		return model.None[string](), nil
	}
	day, ok := model.ParseDay(raw)
	if !ok {
		return model.None[string](), fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
	}
	return model.Some(day.String()), nil
}

func orStatus(s model.Status) model.Status {
	if s.Valid() {
		return s
	}
	return model.StatusTodo
}

func orPriority(p model.Priority) model.Priority {
	if p.Valid() {
		return p
	}
	return model.PriorityMedium
}

// cleanSubtasks drops subtasks whose title is blank.
func cleanSubtasks(in []model.Subtask) []model.Subtask {
	var out []model.Subtask
	for _, s := range in {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func dedupe(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func sameSet(a, b []string) bool {
	as := map[string]bool{}
	for _, s := range a {
		as[s] = true
	}
	bs := map[string]bool{}
	for _, s := range b {
		bs[s] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if !bs[s] {
			return false
		}
	}
	return true
}

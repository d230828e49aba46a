package model

import "strings"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the valid statuses in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is the server representation of a task. CreatedAt/UpdatedAt are assigned
// by the backend and never sent back.
type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description Opt[string] `json:"description,omitzero"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`

	// DueDate is either a bare YYYY-MM-DD date or a full timestamp; only its
	// calendar-day component is meaningful.
	DueDate Opt[string] `json:"due_date,omitzero"`
	List    Opt[string] `json:"list,omitzero"`

	Subtasks []Subtask `json:"subtasks,omitempty"`
	Tags     []string  `json:"tags,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Due returns the task's due calendar day, if any.
func (t Task) Due() (Day, bool) {
	raw, ok := t.DueDate.Get()
	if !ok {
		return Day{}, false
	}
	return ParseDay(raw)
}

// HasTag reports whether the task carries the exact tag name.
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

type List struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Tag struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// BuiltinLists are always available and cannot be created, renamed or deleted.
var BuiltinLists = []string{"personal", "work", "list1"}

func IsBuiltinList(name string) bool {
	name = NormalizeListName(name)
	for _, b := range BuiltinLists {
		if b == name {
			return true
		}
	}
	return false
}

// NormalizeListName applies the list naming rule: trimmed and lowercase.
func NormalizeListName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TaskCreate is the POST /tasks body.
type TaskCreate struct {
	Title       string      `json:"title"`
	Description Opt[string] `json:"description,omitzero"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	DueDate     Opt[string] `json:"due_date,omitzero"`
	List        Opt[string] `json:"list,omitzero"`
	Subtasks    []Subtask   `json:"subtasks,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// TaskUpdate is the PUT /tasks/{id} body. A nil field is not sent; a non-nil
// empty Opt is sent as null and clears the value.
type TaskUpdate struct {
	Title       *string      `json:"title,omitempty"`
	Description *Opt[string] `json:"description,omitempty"`
	Status      *Status      `json:"status,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	DueDate     *Opt[string] `json:"due_date,omitempty"`
	List        *Opt[string] `json:"list,omitempty"`
	Subtasks    *[]Subtask   `json:"subtasks,omitempty"`
	Tags        *[]string    `json:"tags,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Status == nil &&
		u.Priority == nil &&
		u.DueDate == nil &&
		u.List == nil &&
		u.Subtasks == nil &&
		u.Tags == nil
}

// Fields lists the JSON names of the fields present in the update.
func (u TaskUpdate) Fields() []string {
	var out []string
	if u.Title != nil {
		out = append(out, "title")
	}
	if u.Description != nil {
		out = append(out, "description")
	}
	if u.Status != nil {
		out = append(out, "status")
	}
	if u.Priority != nil {
		out = append(out, "priority")
	}
	if u.DueDate != nil {
		out = append(out, "due_date")
	}
	if u.List != nil {
		out = append(out, "list")
	}
	if u.Subtasks != nil {
		out = append(out, "subtasks")
	}
	if u.Tags != nil {
		out = append(out, "tags")
	}
	return out
}

type ParseRequest struct {
	Text string `json:"text"`
}

// ParsedTask is the structured result of natural-language parsing.
type ParsedTask struct {
	Title       string      `json:"title"`
	Description Opt[string] `json:"description,omitzero"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	DueDate     Opt[string] `json:"due_date,omitzero"`
	List        Opt[string] `json:"list,omitzero"`
}

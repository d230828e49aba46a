// Package selection tracks what the detail panel shows: nothing, one task, or
// the create form. The three modes are mutually exclusive and a Viewing id is
// always re-resolved against the latest task snapshot.
package selection

import (
	"taskdeck/internal/model"
)

type Mode int

const (
	Idle Mode = iota
	Viewing
	Creating
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Creating:
		return "creating"
	default:
		return "idle"
	}
}

// Machine is not safe for concurrent use; the workbench serializes access.
type Machine struct {
	mode  Mode
	base  model.Task
	draft Draft
}

func New() *Machine { return &Machine{} }

func (m *Machine) Mode() Mode { return m.mode }

// TaskID returns the viewed task id, or "" outside Viewing.
func (m *Machine) TaskID() string {
	if m.mode != Viewing {
		return ""
	}
	return m.base.ID
}

// Loaded returns the task the draft was seeded from while Viewing.
func (m *Machine) Loaded() (model.Task, bool) {
	if m.mode != Viewing {
		return model.Task{}, false
	}
	return m.base, true
}

// Draft returns the live edit buffer, or nil when Idle.
func (m *Machine) Draft() *Draft {
	if m.mode == Idle {
		return nil
	}
	return &m.draft
}

// Select moves to Viewing from any mode, discarding a create draft.
func (m *Machine) Select(t model.Task) {
	m.mode = Viewing
	m.base = t
	m.draft = DraftFromTask(t)
}

// CreateNew opens the create form. It is only honoured from Idle.
func (m *Machine) CreateNew(list model.Opt[string]) bool {
	if m.mode != Idle {
		return false
	}
	m.mode = Creating
	m.base = model.Task{}
	m.draft = NewDraft(list)
	return true
}

// Created switches to the task the backend returned.
func (m *Machine) Created(t model.Task) {
	m.Select(t)
}

// Deleted returns to Idle when id is the viewed task.
func (m *Machine) Deleted(id string) {
	if m.mode == Viewing && m.base.ID == id {
		m.reset()
	}
}

func (m *Machine) Close() {
	m.reset()
}

// Reconcile re-resolves the viewed id after a reload. A surviving task
// reseeds the draft from its refreshed fields; a missing one drops to Idle.
// It reports whether the mode changed.
func (m *Machine) Reconcile(tasks []model.Task) bool {
	if m.mode != Viewing {
		return false
	}
	for _, t := range tasks {
		if t.ID == m.base.ID {
			m.base = t
			m.draft = DraftFromTask(t)
			return false
		}
	}
	m.reset()
	return true
}

// Action says which request, if any, a save should issue.
type Action int

const (
	NoChange Action = iota
	Create
	Update
)

type Plan struct {
	Action Action
	TaskID string
	Create model.TaskCreate
	Update model.TaskUpdate
}

// PlanSave validates the draft for the current mode. A failed validation
// leaves the machine and draft untouched.
func (m *Machine) PlanSave() (Plan, error) {
	switch m.mode {
	case Creating:
		body, err := m.draft.CreateBody()
		if err != nil {
			return Plan{}, err
		}
		return Plan{Action: Create, Create: body}, nil
	case Viewing:
		body, err := m.draft.UpdateBody(m.base)
		if err != nil {
			return Plan{}, err
		}
		if body.IsEmpty() {
			return Plan{Action: NoChange, TaskID: m.base.ID}, nil
		}
		return Plan{Action: Update, TaskID: m.base.ID, Update: body}, nil
	}
	return Plan{}, nil
}

func (m *Machine) reset() {
	m.mode = Idle
	m.base = model.Task{}
	m.draft = Draft{}
}

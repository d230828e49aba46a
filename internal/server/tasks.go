package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000
	maxListLen        = 100
	maxParseTextLen   = 500
)

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.db.ListTasks(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "Failed to fetch tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("taskId"))
	t, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.writeTaskLookupError(w, r, id, "Failed to fetch task", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req model.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}

	title, err := validTitle(req.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	desc, err := validDescription(req.Description)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := req.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid status '%s'", status))
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid priority '%s'", priority))
		return
	}
	due, err := validDueDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := validList(req.List)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.stamp()
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: desc,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		List:        list,
		Subtasks:    normalizeSubtasks(req.Subtasks, true),
		Tags:        normalizeTags(req.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.InsertTask(r.Context(), t); err != nil {
		s.writeStoreError(w, r, "Failed to create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleTaskUpdate applies a partial update. Fields are decoded one by one so
// an explicit null (clear) can be told apart from an omitted field.
func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("taskId"))

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}

	t, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.writeTaskLookupError(w, r, id, "Failed to update task", err)
		return
	}

	applied, err := applyUpdate(&t, fields)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if applied == 0 {
		writeError(w, http.StatusBadRequest, "No fields provided for update")
		return
	}
	t.UpdatedAt = s.stamp()

	if err := s.db.UpdateTask(r.Context(), t); err != nil {
		s.writeTaskLookupError(w, r, id, "Failed to update task", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("taskId"))
	if err := s.db.DeleteTask(r.Context(), id); err != nil {
		s.writeTaskLookupError(w, r, id, "Failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req model.ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Text cannot be empty")
		return
	}
	if utf8.RuneCountInString(text) > maxParseTextLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Text must be at most %d characters", maxParseTextLen))
		return
	}
	writeJSON(w, http.StatusOK, ParseNaturalLanguage(text, s.now()))
}

func (s *Server) writeTaskLookupError(w http.ResponseWriter, r *http.Request, id, what string, err error) {
	var nf store.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Task with id %s not found", id))
		return
	}
	s.writeStoreError(w, r, what, err)
}

func (s *Server) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func applyUpdate(t *model.Task, fields map[string]json.RawMessage) (int, error) {
	applied := 0
	for key, raw := range fields {
		isNull := strings.TrimSpace(string(raw)) == "null"
		switch key {
		case "title":
			var v string
			if isNull || json.Unmarshal(raw, &v) != nil {
				return 0, errors.New("Title must be a string")
			}
			title, err := validTitle(v)
			if err != nil {
				return 0, err
			}
			t.Title = title
		case "description":
			var v model.Opt[string]
			if err := json.Unmarshal(raw, &v); err != nil {
				return 0, errors.New("Description must be a string or null")
			}
			desc, err := validDescription(v)
			if err != nil {
				return 0, err
			}
			t.Description = desc
		case "status":
			var v model.Status
			if isNull || json.Unmarshal(raw, &v) != nil || !v.Valid() {
				return 0, fmt.Errorf("Invalid status %s", strings.TrimSpace(string(raw)))
			}
			t.Status = v
		case "priority":
			var v model.Priority
			if isNull || json.Unmarshal(raw, &v) != nil || !v.Valid() {
				return 0, fmt.Errorf("Invalid priority %s", strings.TrimSpace(string(raw)))
			}
			t.Priority = v
		case "due_date":
			var v model.Opt[string]
			if err := json.Unmarshal(raw, &v); err != nil {
				return 0, errors.New("Due date must be a string or null")
			}
			due, err := validDueDate(v)
			if err != nil {
				return 0, err
			}
			t.DueDate = due
		case "list":
			var v model.Opt[string]
			if err := json.Unmarshal(raw, &v); err != nil {
				return 0, errors.New("List must be a string or null")
			}
			list, err := validList(v)
			if err != nil {
				return 0, err
			}
			t.List = list
		case "subtasks":
			var v []model.Subtask
			if !isNull {
				if err := json.Unmarshal(raw, &v); err != nil {
					return 0, errors.New("Subtasks must be a list")
				}
			}
			t.Subtasks = normalizeSubtasks(v, false)
		case "tags":
			var v []string
			if !isNull {
				if err := json.Unmarshal(raw, &v); err != nil {
					return 0, errors.New("Tags must be a list of strings")
				}
			}
			t.Tags = normalizeTags(v)
		default:
			continue
		}
		applied++
	}
	return applied, nil
}

func validTitle(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.New("Title cannot be empty or only whitespace")
	}
	if utf8.RuneCountInString(v) > maxTitleLen {
		return "", fmt.Errorf("Title must be at most %d characters", maxTitleLen)
	}
	return v, nil
}

func validDescription(v model.Opt[string]) (model.Opt[string], error) {
	s, ok := v.Get()
	if !ok {
		return v, nil
	}
	if utf8.RuneCountInString(s) > maxDescriptionLen {
		return v, fmt.Errorf("Description must be at most %d characters", maxDescriptionLen)
	}
	return model.OptString(strings.TrimSpace(s)), nil
}

// validDueDate stores only the calendar day.
func validDueDate(v model.Opt[string]) (model.Opt[string], error) {
	raw, ok := v.Get()
	if !ok || strings.TrimSpace(raw) == "" {
		return model.None[string](), nil
	}
	day, ok := model.ParseDay(raw)
	if !ok {
		return v, fmt.Errorf("Invalid due date '%s' (expected YYYY-MM-DD)", raw)
	}
	return model.Some(day.String()), nil
}

func validList(v model.Opt[string]) (model.Opt[string], error) {
	s, ok := v.Get()
	if !ok {
		return v, nil
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxListLen {
		return v, fmt.Errorf("List must be at most %d characters", maxListLen)
	}
	return model.OptString(s), nil
}

// normalizeSubtasks drops blank titles. On create every subtask gets a fresh
// server id; on update existing ids are kept and only missing ones assigned.
func normalizeSubtasks(in []model.Subtask, fresh bool) []model.Subtask {
	out := []model.Subtask{}
	for _, st := range in {
		st.Title = strings.TrimSpace(st.Title)
		if st.Title == "" {
			continue
		}
		if fresh || strings.TrimSpace(st.ID) == "" {
			st.ID = uuid.NewString()
		}
		out = append(out, st)
	}
	return out
}

func normalizeTags(in []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

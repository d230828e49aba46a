// Package taskstore holds the client's snapshot of the task collection.
//
// The snapshot is only ever replaced as a whole; single records are never
// patched in place.
package taskstore

import (
	"context"
	"slices"
	"sync"

	"taskdeck/internal/model"
)

// Source is anything that can produce the full task collection.
type Source interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
}

type Store struct {
	mu       sync.RWMutex
	tasks    []model.Task
	byID     map[string]int
	revision uint64
	loaded   bool
}

func New() *Store {
	return &Store{byID: map[string]int{}}
}

// Replace swaps in a new snapshot and bumps the revision.
func (s *Store) Replace(tasks []model.Task) {
	cp := slices.Clone(tasks)
	idx := make(map[string]int, len(cp))
	for i, t := range cp {
		idx[t.ID] = i
	}
	s.mu.Lock()
	s.tasks = cp
	s.byID = idx
	s.revision++
	s.loaded = true
	s.mu.Unlock()
}

// Load fetches from src and replaces the snapshot. On error the previous
// snapshot is kept.
func (s *Store) Load(ctx context.Context, src Source) error {
	tasks, err := src.ListTasks(ctx)
	if err != nil {
		return err
	}
	s.Replace(tasks)
	return nil
}

// Tasks returns a copy of the snapshot in server order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

func (s *Store) Find(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Revision increases on every Replace. Derived views can key caches on it.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Loaded reports whether any snapshot has been installed yet.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

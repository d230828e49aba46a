package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

const maxNameLen = 100

type nameReq struct {
	Name string `json:"name"`
}

func decodeName(w http.ResponseWriter, r *http.Request, what string) (string, bool) {
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, what+" name cannot be empty")
		return "", false
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s name must be at most %d characters", what, maxNameLen))
		return "", false
	}
	return name, true
}

// GET /lists returns custom lists only; built-ins are implicit.
func (s *Server) handleListList(w http.ResponseWriter, r *http.Request) {
	lists, err := s.db.ListLists(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "Failed to fetch lists", err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleListCreate(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r, "List")
	if !ok {
		return
	}
	name = model.NormalizeListName(name)
	if model.IsBuiltinList(name) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Cannot create default list '%s'", name))
		return
	}
	l := model.List{ID: uuid.NewString(), Name: name, CreatedAt: s.stamp()}
	if err := s.db.InsertList(r.Context(), l); err != nil {
		var ex store.ExistsError
		if errors.As(err, &ex) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("List '%s' already exists", name))
			return
		}
		s.writeStoreError(w, r, "Failed to create list", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListDelete(w http.ResponseWriter, r *http.Request) {
	name := model.NormalizeListName(r.PathValue("name"))
	if model.IsBuiltinList(name) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Cannot delete default list '%s'", name))
		return
	}
	if err := s.db.DeleteList(r.Context(), name); err != nil {
		var nf store.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("List '%s' not found", name))
			return
		}
		s.writeStoreError(w, r, "Failed to delete list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTagList(w http.ResponseWriter, r *http.Request) {
	tags, err := s.db.ListTags(r.Context())
	if err != nil {
		s.writeStoreError(w, r, "Failed to fetch tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Tag names keep their case.
func (s *Server) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeName(w, r, "Tag")
	if !ok {
		return
	}
	t := model.Tag{ID: uuid.NewString(), Name: name, CreatedAt: s.stamp()}
	if err := s.db.InsertTag(r.Context(), t); err != nil {
		var ex store.ExistsError
		if errors.As(err, &ex) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Tag '%s' already exists", name))
			return
		}
		s.writeStoreError(w, r, "Failed to create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTagDelete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if err := s.db.DeleteTag(r.Context(), name); err != nil {
		var nf store.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Tag '%s' not found", name))
			return
		}
		s.writeStoreError(w, r, "Failed to delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

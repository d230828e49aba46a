package workbench

import (
	"errors"
	"fmt"
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/metadata"
	"taskdeck/internal/selection"
)

const backendHint = "Please check if backend is running."

// UserMessage turns an error into notification text. Server detail messages
// are shown verbatim.
func UserMessage(err error) string {
	return userMessage(err, "Request failed")
}

func userMessage(err error, fallback string) string {
	var (
		dup api.DuplicateError
		nf  api.NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, selection.ErrTitleRequired):
		return "Task title is required"
	case errors.Is(err, selection.ErrInvalidDueDate):
		return "Due date must be a valid YYYY-MM-DD date"
	case errors.Is(err, ErrEmptyText):
		return fallback
	case errors.Is(err, metadata.ErrEmptyName):
		return "Name is required"
	case errors.Is(err, metadata.ErrBuiltinList):
		return "Built-in lists cannot be created or deleted"
	case errors.Is(err, metadata.ErrReservedName):
		return "That name is reserved for a view"
	case errors.Is(err, metadata.ErrDegraded):
		return "Lists and tags are read-only while offline. " + backendHint
	case errors.Is(err, api.ErrTimeout):
		return "The backend did not respond in time. " + backendHint
	case errors.Is(err, api.ErrNetwork):
		if strings.Contains(fallback, backendHint) {
			return fallback
		}
		return "Could not reach the backend. " + backendHint
	case errors.As(err, &dup):
		return dup.Error()
	case errors.As(err, &nf):
		if nf.Detail != "" {
			return nf.Detail
		}
		return fmt.Sprintf("%s not found", nf.Kind)
	}
	if d, ok := api.Detail(err); ok {
		return d
	}
	return fallback
}

// errorKind is the short label logged with failures.
func errorKind(err error) string {
	var (
		dup api.DuplicateError
		nf  api.NotFoundError
		val api.ValidationError
		st  api.StatusError
	)
	switch {
	case errors.Is(err, api.ErrTimeout):
		return "timeout"
	case errors.Is(err, api.ErrNetwork):
		return "network"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &dup):
		return "duplicate"
	case errors.As(err, &val):
		return "validation"
	case errors.As(err, &st):
		return "status"
	}
	return "local"
}

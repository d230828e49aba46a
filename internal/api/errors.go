package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the request never completed (refused, reset, DNS...).
	ErrNetwork = errors.New("backend unreachable")
	// ErrTimeout means the initial task load ran past its deadline.
	ErrTimeout = errors.New("backend timed out")
	// ErrDuplicate matches any DuplicateError via errors.Is.
	ErrDuplicate = errors.New("already exists")
)

type NotFoundError struct {
	Kind   string
	ID     string
	Detail string
}

func (e NotFoundError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DuplicateError is a create rejected because the name is already taken.
type DuplicateError struct {
	Kind   string
	Name   string
	Detail string
}

func (e DuplicateError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s '%s' already exists", e.Kind, e.Name)
}

func (e DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// ValidationError is a 400/422 the backend explained with a detail message.
type ValidationError struct {
	Detail string
}

func (e ValidationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "invalid request"
}

// StatusError covers every other non-2xx response.
type StatusError struct {
	Code   int
	Detail string
}

func (e StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Code)
}

// Detail returns the server-provided message carried by err, if any.
func Detail(err error) (string, bool) {
	var (
		nf  NotFoundError
		dup DuplicateError
		val ValidationError
		st  StatusError
	)
	switch {
	case errors.As(err, &nf):
		return nf.Detail, nf.Detail != ""
	case errors.As(err, &dup):
		return dup.Detail, dup.Detail != ""
	case errors.As(err, &val):
		return val.Detail, val.Detail != ""
	case errors.As(err, &st):
		return st.Detail, st.Detail != ""
	}
	return "", false
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

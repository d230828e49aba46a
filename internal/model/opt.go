package model

import (
	"bytes"
	"encoding/json"
)

// Opt is an explicit optional value. The zero value is absent.
//
// On the wire an absent Opt is JSON null (or an omitted field when tagged
// omitzero), so "no list" and "not sent" never collapse into an empty string.
type Opt[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Opt[T] { return Opt[T]{v: v, ok: true} }

func None[T any]() Opt[T] { return Opt[T]{} }

func (o Opt[T]) Get() (T, bool) { return o.v, o.ok }

func (o Opt[T]) Present() bool { return o.ok }

// OrZero returns the value, or T's zero value when absent.
func (o Opt[T]) OrZero() T { return o.v }

func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// IsZero lets encoding/json's omitzero drop absent values.
func (o Opt[T]) IsZero() bool { return !o.ok }

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Opt[T]{v: v, ok: true}
	return nil
}

// OptString treats a blank string as absent.
func OptString(s string) Opt[string] {
	if s == "" {
		return Opt[string]{}
	}
	return Some(s)
}

// EqualOpt compares two optionals of a comparable type.
func EqualOpt[T comparable](a, b Opt[T]) bool {
	if a.ok != b.ok {
		return false
	}
	return !a.ok || a.v == b.v
}

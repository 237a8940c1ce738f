// Package apperrors holds the error kinds that cross package boundaries.
// Handlers map them to HTTP responses; callers match them with errors.As.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries per-field messages, keyed by JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidation(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) HasErrors() bool { return e != nil && len(e.Fields) > 0 }

// OrNil returns nil when no field failed, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError means a referenced id did not resolve.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError is a unique or foreign key violation.
type ConflictError struct {
	Constraint string
	Message    string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict on " + e.Constraint
}

// TransientIOError is a backend failure that survived one retry.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string { return e.Op + ": backend unavailable: " + e.Err.Error() }
func (e *TransientIOError) Unwrap() error { return e.Err }

// Failure describes one row of a batch that could not be processed.
type Failure struct {
	ID     string `json:"id"`
	CaseID string `json:"case_id,omitempty"`
	Legacy bool   `json:"legacy,omitempty"`
	Reason string `json:"reason"`
}

// PartialBatchFailure is returned when some rows of a batch succeeded and others did not.
// Rows that succeeded are not rolled back.
type PartialBatchFailure struct {
	Succeeded int
	Failed    []Failure
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("%d of %d items failed", len(e.Failed), len(e.Failed)+e.Succeeded)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

func IsTransient(err error) bool {
	var t *TransientIOError
	return errors.As(err, &t)
}

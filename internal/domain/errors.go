package domain

import (
	"fmt"
	"strings"
)

// FieldIssue describes one rejected input field.
type FieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError reports malformed input. It maps to 422.
type ValidationError struct {
	Issues []FieldIssue
}

// NewValidationError builds a ValidationError from issues.
func NewValidationError(issues ...FieldIssue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, strings.Join(issue.Loc, ".")+": "+issue.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing resource. It maps to 404.
type NotFoundError struct {
	Resource string
	ID       int64
}

// NewNotFoundError builds a NotFoundError for resource id.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ConflictError reports a uniqueness or state conflict. It maps to 409.
// No current operation produces it.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

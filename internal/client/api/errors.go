package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// FieldPath is the "path" member of a validation error item. The backend is
// inconsistent about its shape: sometimes a JSON string, sometimes an array
// of path segments. Either way it normalizes to the leading field name.
type FieldPath string

func (p *FieldPath) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = FieldPath(s)
		return nil
	}

	var segments []string
	if err := json.Unmarshal(b, &segments); err != nil {
		return fmt.Errorf("field path must be a string or a string array: %w", err)
	}
	if len(segments) > 0 {
		*p = FieldPath(segments[0])
	}
	return nil
}

// FieldErrorItem is one entry of the "errors" array in a validation failure
// body.
type FieldErrorItem struct {
	Path    FieldPath `json:"path"`
	Message string    `json:"message"`
}

// errorBody is the union of the two failure payload shapes:
// {message} and {message, errors:[{path, message}]}.
type errorBody struct {
	Message string           `json:"message"`
	Errors  []FieldErrorItem `json:"errors"`
}

// APIError is a structured failure from the collaborator. FieldErrors is
// non-empty only for validation failures. Unwrap maps HTTP status onto the
// package sentinels so callers can use errors.Is.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		return fmt.Sprintf("%s (%d field errors)", e.Message, len(e.FieldErrors))
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case 0:
		// No HTTP response at all: transport failure.
		return ErrUnavailable
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// FoldFieldErrors collapses validation error items into a field-name-keyed
// map. Items without a usable path land under "general"; multiple messages
// for the same field are joined with "; ".
func FoldFieldErrors(items []FieldErrorItem) map[string]string {
	if len(items) == 0 {
		return nil
	}
	folded := make(map[string]string, len(items))
	for _, item := range items {
		field := string(item.Path)
		if field == "" {
			field = "general"
		}
		if prev, ok := folded[field]; ok {
			folded[field] = prev + "; " + item.Message
		} else {
			folded[field] = item.Message
		}
	}
	return folded
}

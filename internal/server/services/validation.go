package services

import "fmt"

// FieldError describes a single invalid input field. Path names the field the
// way clients sent it (JSON key).
type FieldError struct {
	Path    string
	Message string
}

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d fields)", len(e.Fields))
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(path, message string) {
	v.fields = append(v.fields, FieldError{Path: path, Message: message})
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// Package domainerrors defines the coded errors services return to transport
// layers. A Code decides the HTTP status; the message is safe to show to
// clients unless the code is internal.
package domainerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeDocumentGeneration Code = "document_generation_failed"
	CodeInternal           Code = "internal_error"
	CodeUnavailable        Code = "unavailable"
)

// FieldError describes one violated constraint on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error carries a Code, a client message, optional field details and the
// underlying cause.
type Error struct {
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and client message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation builds a validation_error from field violations. The message
// joins the individual field messages so clients reading only
// error_description still see every problem.
func Validation(fields []FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &Error{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

// As extracts a *Error from an error chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// HasCode is an alias of Is kept for readability in tests.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// HasRule reports whether err is a validation error with a violation of
// rule on field.
func HasRule(err error, field, rule string) bool {
	de, ok := As(err)
	if !ok {
		return false
	}
	for _, f := range de.Fields {
		if f.Field == field && f.Rule == rule {
			return true
		}
	}
	return false
}

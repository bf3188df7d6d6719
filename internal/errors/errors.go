// Package errors provides structured error types for trackline.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for trackline.
const (
	CodeValidation Code = "VALIDATION_FAILED"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	CodeConstraint Code = "CONSTRAINT_VIOLATION"
	CodeInternal   Code = "INTERNAL"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBadRequest
	CategoryNotFound
	CategoryConflict
	CategoryInternal
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeValidation: CategoryBadRequest,
	CodeNotFound:   CategoryNotFound,
	CodeConflict:   CategoryConflict,
	CodeConstraint: CategoryBadRequest,
	CodeInternal:   CategoryInternal,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryBadRequest:
		return 400
	case CategoryNotFound:
		return 404
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// FieldViolation describes a single invalid request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	return v.Field + ": " + v.Message
}

// TrackError is the structured error type for trackline.
type TrackError struct {
	Code    Code             `json:"code"`
	Message string           `json:"message"`
	Fields  []FieldViolation `json:"fields,omitempty"`
	Cause   error            `json:"-"`
}

// Error implements the error interface.
func (e *TrackError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *TrackError) Unwrap() error {
	return e.Cause
}

// Category returns the error category for HTTP status mapping.
func (e *TrackError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *TrackError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *TrackError) MarshalJSON() ([]byte, error) {
	type alias TrackError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a TrackError with the same code.
func (e *TrackError) Is(target error) bool {
	t, ok := target.(*TrackError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// --- Error constructors ---

// Validation returns a 400-class error listing every violated field.
// The top-level message surfaces only the first violation.
func Validation(fields []FieldViolation) *TrackError {
	msg := "validation failed"
	if len(fields) > 0 {
		msg = fields[0].String()
	}
	return &TrackError{
		Code:    CodeValidation,
		Message: msg,
		Fields:  fields,
	}
}

// ValidationMsg returns a single-violation validation error.
func ValidationMsg(field, message string) *TrackError {
	return Validation([]FieldViolation{{Field: field, Message: message}})
}

// NotFound returns a 404-class error for an id that does not resolve.
func NotFound(resource string, id any) *TrackError {
	return &TrackError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

// Conflict returns a 409-class error for a uniqueness collision.
func Conflict(message string) *TrackError {
	return &TrackError{
		Code:    CodeConflict,
		Message: message,
	}
}

// Constraint returns a 400-class error for a storage check constraint
// tripped despite passing validation (e.g. a race).
func Constraint(err error) *TrackError {
	return &TrackError{
		Code:    CodeConstraint,
		Message: "storage constraint violated",
		Cause:   err,
	}
}

// Internal wraps any other failure as a 500-class error.
func Internal(message string, err error) *TrackError {
	return &TrackError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// AsTrackError attempts to convert an error to a TrackError.
// Returns nil if the error is not a TrackError.
func AsTrackError(err error) *TrackError {
	var te *TrackError
	if As(err, &te) {
		return te
	}
	return nil
}

// As is a convenience wrapper for errors.As semantics on TrackError.
func As(err error, target any) bool {
	return asError(err, target)
}

func asError(err error, target any) bool {
	if err == nil {
		return false
	}
	if te, ok := err.(*TrackError); ok {
		if t, ok := target.(**TrackError); ok {
			*t = te
			return true
		}
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return asError(unwrapper.Unwrap(), target)
	}
	return false
}

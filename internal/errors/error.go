package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryCompile Category = "compile"
	CategoryRoute   Category = "route"
	CategoryRender  Category = "render"
	CategoryHandler Category = "handler"
	CategoryHooks   Category = "hooks"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// NextgoError is a structured error with a stable code, a category, and
// optional detail, source location, and fix suggestion.
type NextgoError struct {
	// Code is a unique error identifier (e.g., "E100").
	Code string

	// Category is the error type (compile, route, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source code location where the error occurred.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *NextgoError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *NextgoError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds source location to the error.
func (e *NextgoError) WithLocation(file string, line, column int) *NextgoError {
	e.Location = &Location{File: file, Line: line, Column: column}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *NextgoError) WithSuggestion(s string) *NextgoError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *NextgoError) WithDetail(d string) *NextgoError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *NextgoError) Wrap(err error) *NextgoError {
	e.Wrapped = err
	return e
}

// New creates a NextgoError from a registered error code.
func New(code string) *NextgoError {
	template, ok := registry[code]
	if !ok {
		return &NextgoError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &NextgoError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new NextgoError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *NextgoError {
	return &NextgoError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a NextgoError.
func FromError(err error, code string) *NextgoError {
	if err == nil {
		return nil
	}
	if ne, ok := err.(*NextgoError); ok {
		return ne
	}
	return New(code).Wrap(err)
}

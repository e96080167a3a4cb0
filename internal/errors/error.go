package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryPlatform Category = "platform"
	CategoryRender   Category = "render"
	CategoryStore    Category = "store"
	CategoryCLI      Category = "cli"
)

// EngineError is a structured error with a code, suggestions and documentation.
type EngineError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, platform, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *EngineError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an EngineError with the same code.
// Uncoded errors only match themselves.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	if e.Code == "" || t.Code == "" {
		return e == t
	}
	return e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *EngineError) WithSuggestion(s string) *EngineError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *EngineError) WithDetail(d string) *EngineError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *EngineError) Wrap(err error) *EngineError {
	e.Wrapped = err
	return e
}

// New creates an EngineError from a registered error code.
func New(code string) *EngineError {
	template, ok := GetTemplate(code)
	if !ok {
		return &EngineError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &EngineError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new EngineError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *EngineError {
	return &EngineError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an EngineError.
// Errors that already are (or wrap) an EngineError are returned as-is.
func FromError(err error, code string) *EngineError {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if stderrors.As(err, &ee) {
		return ee
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, an EngineError with code.
func HasCode(err error, code string) bool {
	var ee *EngineError
	for err != nil {
		if !stderrors.As(err, &ee) {
			return false
		}
		if ee.Code == code {
			return true
		}
		err = ee.Wrapped
	}
	return false
}

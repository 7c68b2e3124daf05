package registry

import (
	"bytes"
	"fmt"
)

// ValidationError reports one problem in a generator definition.
type ValidationError struct {
	Field      string // field path (e.g. "spec.params[1].kind")
	Message    string
	Suggestion string // helpful suggestion (optional)
	Line       int    // line number in YAML (if available)
}

// Error returns a formatted error message.
func (e *ValidationError) Error() string {
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("validation error at %s (line %d): %s", e.Field, e.Line, e.Message)
	} else {
		msg = fmt.Sprintf("validation error at %s: %s", e.Field, e.Message)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// ValidationErrors collects every problem found in one pass, so a
// definition author sees them all at once.
type ValidationErrors []ValidationError

// Error returns all validation errors with clear separation.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "found %d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, err.Error())
	}
	return buf.String()
}

// NotFoundError reports a generator name with no registered definition.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("generator %q is not registered", e.Name)
}

// AlreadyExistsError reports a duplicate registration.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("generator %q is already registered", e.Name)
}

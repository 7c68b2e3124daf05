package manifest

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid call mutation, such as a missing
// field or a self-dependency.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError reports a reference to a call the plan does not hold.
// Kind distinguishes a missing call from a missing dependency.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in plan", e.Kind, e.Name)
}

// AlreadyExistsError reports a duplicate call id.
type AlreadyExistsError struct {
	ID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("call %q already exists in plan", e.ID)
}

// CycleError reports a circular dependency. Stack is the dependency path
// that closed the cycle; ID names a call on it.
type CycleError struct {
	ID    string
	Stack []string
}

func (e *CycleError) Error() string {
	if len(e.Stack) > 0 {
		return fmt.Sprintf("circular dependency through %q: %s",
			e.ID, strings.Join(e.Stack, " -> "))
	}
	return fmt.Sprintf("circular dependency through %q", e.ID)
}

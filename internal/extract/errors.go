package extract

import "fmt"

// ValidationError reports a template whose structure cannot be analyzed,
// such as an unclosed {{range}} or a nested loop.
type ValidationError struct {
	Message string // what is wrong
	Action  string // offending template action, if known
	Line    int    // 1-based line in the template (0 if unknown)
	Hint    string // how to fix it (optional)
}

// Error returns a formatted error message.
func (e *ValidationError) Error() string {
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("template error at line %d: %s", e.Line, e.Message)
	} else {
		msg = fmt.Sprintf("template error: %s", e.Message)
	}
	if e.Action != "" {
		msg += fmt.Sprintf(" in %s", e.Action)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf(". Hint: %s", e.Hint)
	}
	return msg
}

// lineAt returns the 1-based line number of byte offset pos in s.
func lineAt(s string, pos int) int {
	if pos > len(s) {
		pos = len(s)
	}
	line := 1
	for i := 0; i < pos; i++ {
		if s[i] == '\n' {
			line++
		}
	}
	return line
}

package marker

import "fmt"

// NoMarkerError reports a file that holds no generation unit markers.
type NoMarkerError struct {
	Path string
}

func (e *NoMarkerError) Error() string {
	return fmt.Sprintf("%s: no generation unit markers found", e.Path)
}

// AlreadyExistsError reports a create refused because the target file
// already holds content lyrebird does not own.
type AlreadyExistsError struct {
	Path   string
	Reason string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Path, e.Reason)
}

// StructuralError reports sentinel markers that cannot be paired up:
// a begin without an end, a stray end, duplicate markers, or the retired
// marker format without gen=. Hint, when set, tells the user how to fix
// the file.
type StructuralError struct {
	Path   string
	Detail string
	Hint   string
}

func (e *StructuralError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Path, e.Detail, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Detail)
}

// NoTemplateError reports a sync against a generator that cannot expose a
// raw template, such as one registered with a render function.
type NoTemplateError struct {
	Generator string
}

func (e *NoTemplateError) Error() string {
	return fmt.Sprintf("generator %q renders through an opaque function and cannot be synced", e.Generator)
}

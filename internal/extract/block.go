package extract

// Kind classifies the text a placeholder is expected to produce. It decides
// the character class its Matcher captures with.
type Kind string

const (
	// KindIdentifier matches an identifier run (letters, digits, underscore).
	KindIdentifier Kind = "identifier"
	// KindStringLiteral matches a quote-excluding run, for placeholders that
	// sit inside quoted context.
	KindStringLiteral Kind = "string-literal"
	// KindNumber matches a digit run.
	KindNumber Kind = "number"
	// KindString is the default loop-field kind: any run up to the next
	// statement terminator.
	KindString Kind = "string"
)

// ParameterMap holds recovered values by parameter name. Values are string
// for Params, []string for scalar-item Loops, and []map[string]string for
// structured Loops. A value that could not be recovered is absent, never nil.
type ParameterMap = map[string]any

// Block is one unit of template structure found by Analyze: a Param or a
// Loop. The set of implementations is closed.
type Block interface {
	block()
}

// Param is a scalar placeholder outside any loop. LiteralContext is the raw
// template line it appeared on, kept for positional matching.
type Param struct {
	Name           string
	LiteralContext string
	Hint           Kind
}

func (Param) block() {}

// Field is one named item field inside a structured Loop body.
type Field struct {
	Name string
	Kind Kind
}

// Loop is an iteration over a named collection. Fields lists the distinct
// item fields in first-appearance order; IsScalarItem marks bodies that
// reference the bare item instead. OpenAnchor and CloseAnchor carry the
// enclosing delimiter context a scalar loop is located by; both are empty
// when no enclosing delimiter exists.
type Loop struct {
	Collection   string
	Body         string
	Fields       []Field
	IsScalarItem bool
	OpenAnchor   string
	CloseAnchor  string
}

func (Loop) block() {}

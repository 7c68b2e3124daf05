package extract

import (
	"fmt"
	"regexp"
	"strings"
)

type matcherKind int

const (
	matchParam matcherKind = iota
	matchLoop
	matchScalarLoop
)

// Matcher is the compiled pattern for one Block. Compilation is a pure
// function of the Block: identical Blocks always yield identical patterns.
// The regular expression never leaks past this type.
type Matcher struct {
	kind   matcherKind
	name   string
	fields []string
	re     *regexp.Regexp
}

// Compile builds the Matcher for a Block. A nil Matcher with a nil error
// means the Block has no extractable shape (free-floating scalar loop, loop
// body without item references); its value is simply omitted.
func Compile(b Block) (*Matcher, error) {
	switch blk := b.(type) {
	case Param:
		return compileParam(blk)
	case Loop:
		switch {
		case len(blk.Fields) > 0:
			return compileLoop(blk)
		case blk.IsScalarItem && blk.OpenAnchor != "":
			return compileScalarLoop(blk)
		default:
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unsupported block type %T", b)
	}
}

// Pattern exposes the compiled pattern text, mainly for debugging.
func (m *Matcher) Pattern() string {
	return m.re.String()
}

// Apply runs the Matcher against source. ok is false only when a Param
// found no match; Loops always produce a (possibly empty) sequence.
func (m *Matcher) Apply(source string) (name string, value any, ok bool) {
	switch m.kind {
	case matchParam:
		match := m.re.FindStringSubmatch(source)
		if match == nil {
			return m.name, nil, false
		}
		for i, group := range m.re.SubexpNames() {
			if group == m.name {
				return m.name, match[i], true
			}
		}
		return m.name, nil, false

	case matchLoop:
		names := m.re.SubexpNames()
		rows := make([]map[string]string, 0, 4)
		for _, match := range m.re.FindAllStringSubmatch(source, -1) {
			row := make(map[string]string, len(m.fields))
			for i, group := range names {
				if group != "" {
					row[group] = match[i]
				}
			}
			rows = append(rows, row)
		}
		return m.name, rows, true

	default: // matchScalarLoop
		match := m.re.FindStringSubmatch(source)
		if match == nil {
			return m.name, []string{}, true
		}
		return m.name, splitScalarItems(match[1]), true
	}
}

func compileParam(blk Param) (*Matcher, error) {
	re, err := regexp.Compile(linePattern(blk.LiteralContext, blk.Name, blk.Hint))
	if err != nil {
		return nil, &ValidationError{
			Message: fmt.Sprintf("cannot compile matcher for parameter %q: %v", blk.Name, err),
		}
	}
	return &Matcher{kind: matchParam, name: blk.Name, re: re}, nil
}

func compileLoop(blk Loop) (*Matcher, error) {
	body := strings.Trim(blk.Body, " \t\r\n")

	kinds := make(map[string]Kind, len(blk.Fields))
	fields := make([]string, 0, len(blk.Fields))
	for _, f := range blk.Fields {
		kinds[f.Name] = f.Kind
		fields = append(fields, f.Name)
	}

	var (
		b        strings.Builder
		last     int
		captured = map[string]bool{}
	)
	b.WriteString("(?m)")
	for _, loc := range actionRe.FindAllStringSubmatchIndex(body, -1) {
		b.WriteString(escapeFlexible(body[last:loc[0]]))
		content := body[loc[2]:loc[3]]
		if m := fieldRefRe.FindStringSubmatch(content); m != nil && kinds[m[1]] != "" && !captured[m[1]] {
			captured[m[1]] = true
			fmt.Fprintf(&b, "(?P<%s>%s)", m[1], classFor(kinds[m[1]]))
		} else {
			b.WriteString(`.*?`)
		}
		last = loc[1]
	}
	b.WriteString(escapeFlexible(body[last:]))

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, &ValidationError{
			Message: fmt.Sprintf("cannot compile matcher for collection %q: %v", blk.Collection, err),
		}
	}
	return &Matcher{kind: matchLoop, name: blk.Collection, fields: fields, re: re}, nil
}

func compileScalarLoop(blk Loop) (*Matcher, error) {
	pattern := linePattern(blk.OpenAnchor, "", "") + `(?s)(.*?)` + regexp.QuoteMeta(blk.CloseAnchor)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ValidationError{
			Message: fmt.Sprintf("cannot compile matcher for collection %q: %v", blk.Collection, err),
		}
	}
	return &Matcher{kind: matchScalarLoop, name: blk.Collection, re: re}, nil
}

// linePattern builds the pattern for one literal template line. The target
// placeholder becomes a named capture with the class for hint; every other
// action on the line degrades to a wildcard, so extraction never requires
// knowing sibling values. An empty target makes the whole line an anchor.
func linePattern(line, target string, hint Kind) string {
	line = strings.TrimSpace(line)

	var (
		b        strings.Builder
		last     int
		captured bool
	)
	for _, loc := range actionRe.FindAllStringSubmatchIndex(line, -1) {
		b.WriteString(escapeFlexible(line[last:loc[0]]))
		content := line[loc[2]:loc[3]]
		if !captured && target != "" && content == "."+target {
			captured = true
			fmt.Fprintf(&b, "(?P<%s>%s)", target, classFor(hint))
		} else {
			b.WriteString(`.*?`)
		}
		last = loc[1]
	}
	b.WriteString(escapeFlexible(line[last:]))
	return b.String()
}

// classFor maps a Kind to the character class its capture uses.
func classFor(k Kind) string {
	switch k {
	case KindIdentifier:
		return `[A-Za-z_][A-Za-z0-9_]*`
	case KindStringLiteral:
		return "[^\"'`\\r\\n]*"
	case KindNumber:
		return `[0-9]+`
	case KindString:
		return `[^;,)\s]+`
	default:
		return `\S+`
	}
}

// escapeFlexible escapes literal template text into required pattern text.
// Whitespace runs match flexibly so reformatting an edited file does not
// break extraction: interior runs need at least one space or tab, line
// breaks tolerate indentation changes on both sides.
func escapeFlexible(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == '\r':
			i++
		case c == '\n':
			b.WriteString(`\n[ \t]*`)
			i++
			for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
				i++
			}
		case c == ' ' || c == '\t':
			j := i
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			if j < len(s) && (s[j] == '\n' || s[j] == '\r') {
				// Trailing blanks before a break are commonly stripped by
				// editors; fold them into the break's flexibility.
				b.WriteString(`[ \t]*`)
			} else {
				b.WriteString(`[ \t]+`)
			}
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

// splitScalarItems turns the interior of a delimited block into its items:
// non-empty trimmed lines with trailing terminators stripped, in order.
func splitScalarItems(interior string) []string {
	items := []string{}
	for _, line := range strings.Split(interior, "\n") {
		line = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(line), ",;"))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

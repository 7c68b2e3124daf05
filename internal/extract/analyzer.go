package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Options carries knowledge the template alone does not hold, typically the
// parameter kinds a generator definition declares.
type Options struct {
	// ParamKinds overrides the capture kind of a named Param.
	ParamKinds map[string]Kind
	// FieldKinds overrides the kind of a loop field, keyed "collection.field".
	FieldKinds map[string]Kind
}

// actionRe matches one template action, tolerating trim markers.
var actionRe = regexp.MustCompile(`\{\{-?\s*(.*?)\s*-?\}\}`)

// fieldRefRe matches a plain field access like ".name".
var fieldRefRe = regexp.MustCompile(`^\.([A-Za-z_][A-Za-z0-9_]*)$`)

// scope is one open control action during the scan.
type scope struct {
	kind       string // "range", "if", "with", "block", "define"
	collection string
	openStart  int // offset of the opening action
	bodyStart  int // offset just past the opening action
}

// Analyze parses a template into its ordered Blocks. Analysis is
// deterministic: the same template and options always produce the same
// sequence. Structural damage (unclosed or nested {{range}}, stray {{end}})
// returns a ValidationError; actions that are merely not extractable are
// skipped.
func Analyze(template string, opts Options) ([]Block, error) {
	var (
		blocks []Block
		stack  []scope
		seen   = map[string]bool{}
	)

	inRange := func() bool {
		for _, s := range stack {
			if s.kind == "range" {
				return true
			}
		}
		return false
	}

	for _, loc := range actionRe.FindAllStringSubmatchIndex(template, -1) {
		start, end := loc[0], loc[1]
		content := template[loc[2]:loc[3]]
		head, expr := actionHead(content)

		switch head {
		case "range":
			if inRange() {
				return nil, &ValidationError{
					Message: "nested {{range}} loops are not supported",
					Action:  template[start:end],
					Line:    lineAt(template, start),
					Hint:    "move the inner loop into its own generator",
				}
			}
			m := fieldRefRe.FindStringSubmatch(expr)
			if m == nil {
				return nil, &ValidationError{
					Message: "unsupported range expression",
					Action:  template[start:end],
					Line:    lineAt(template, start),
					Hint:    "only {{range .collection}} loops are extractable",
				}
			}
			stack = append(stack, scope{kind: "range", collection: m[1], openStart: start, bodyStart: end})

		case "if", "with", "block", "define":
			stack = append(stack, scope{kind: head, openStart: start, bodyStart: end})

		case "else":
			// stays inside the enclosing scope

		case "end":
			if len(stack) == 0 {
				return nil, &ValidationError{
					Message: "{{end}} without an open action",
					Line:    lineAt(template, start),
				}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.kind != "range" || seen[top.collection] {
				continue
			}
			seen[top.collection] = true
			blocks = append(blocks, analyzeLoop(template, top, start, end, opts))

		default:
			// A plain field access outside every scope becomes a Param.
			// Inside if/with the line may not render at all, so nothing is
			// collected there.
			if len(stack) > 0 {
				continue
			}
			m := fieldRefRe.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			name := m[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			line := lineOf(template, start)
			blocks = append(blocks, Param{
				Name:           name,
				LiteralContext: line,
				Hint:           paramHint(name, line, opts),
			})
		}
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return nil, &ValidationError{
			Message: fmt.Sprintf("unclosed {{%s}}", top.kind),
			Action:  template[top.openStart:top.bodyStart],
			Line:    lineAt(template, top.openStart),
			Hint:    "add a matching {{end}}",
		}
	}

	return blocks, nil
}

// actionHead splits an action into its control keyword and trailing
// expression. The template lexer does not require a space after keywords,
// so "range.items" opens a loop just like "range .items".
func actionHead(content string) (head, expr string) {
	for _, kw := range [...]string{"range", "if", "with", "else", "end", "block", "define"} {
		if content == kw {
			return kw, ""
		}
		if strings.HasPrefix(content, kw) {
			switch rest := content[len(kw):]; rest[0] {
			case ' ', '\t', '.', '$', '(':
				return kw, strings.TrimSpace(rest)
			}
		}
	}
	return content, ""
}

func analyzeLoop(template string, s scope, endStart, endEnd int, opts Options) Loop {
	body := template[s.bodyStart:endStart]

	var (
		fields    []Field
		seenField = map[string]bool{}
		scalarRef bool
	)
	for _, loc := range actionRe.FindAllStringSubmatchIndex(body, -1) {
		content := body[loc[2]:loc[3]]
		if content == "." {
			scalarRef = true
			continue
		}
		if m := fieldRefRe.FindStringSubmatch(content); m != nil && !seenField[m[1]] {
			seenField[m[1]] = true
			fields = append(fields, Field{Name: m[1], Kind: fieldKind(s.collection, m[1], opts)})
		}
	}

	loop := Loop{Collection: s.collection, Body: body}
	switch {
	case len(fields) > 0:
		loop.Fields = fields
	case scalarRef:
		loop.IsScalarItem = true
		loop.OpenAnchor, loop.CloseAnchor = delimiterAnchors(template, s.openStart, endEnd)
	}
	return loop
}

// delimiterAnchors locates the literal delimiter context enclosing a scalar
// loop: the nearest preceding non-blank line ending with an opening bracket,
// and the matching closing bracket that follows {{end}}. Both are empty when
// the loop is free-floating.
func delimiterAnchors(template string, openStart, endEnd int) (string, string) {
	var open string
	for _, line := range splitLinesBackward(template[:openStart]) {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			open = trimmed
			break
		}
	}
	if open == "" {
		return "", ""
	}

	var want byte
	switch open[len(open)-1] {
	case '[':
		want = ']'
	case '{':
		want = '}'
	case '(':
		want = ')'
	default:
		return "", ""
	}

	rest := strings.TrimLeft(template[endEnd:], " \t\r\n")
	if rest == "" || rest[0] != want {
		return "", ""
	}
	return open, string(want)
}

// splitLinesBackward returns the lines of s from last to first.
func splitLinesBackward(s string) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		out = append(out, lines[i])
	}
	return out
}

// lineOf returns the full template line containing byte offset pos.
func lineOf(template string, pos int) string {
	start := strings.LastIndexByte(template[:pos], '\n') + 1
	end := strings.IndexByte(template[pos:], '\n')
	if end < 0 {
		return template[start:]
	}
	return template[start : pos+end]
}

func paramHint(name, line string, opts Options) Kind {
	if k, ok := opts.ParamKinds[name]; ok {
		return k
	}
	if strings.ContainsAny(line, "\"'`") {
		return KindStringLiteral
	}
	return KindIdentifier
}

func fieldKind(collection, field string, opts Options) Kind {
	if k, ok := opts.FieldKinds[collection+"."+field]; ok {
		return k
	}
	return KindString
}

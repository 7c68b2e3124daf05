// Package marker owns the sentinel protocol: the begin/end comment pair
// that fences a generation unit inside an ordinary source file, and the
// Producer that creates and re-synchronizes those units.
package marker

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	beginToken = "lyrebird:begin"
	endToken   = "lyrebird:end"
)

// Dialect describes how sentinel lines are commented in one family of
// source files. Trailer is empty for line comments.
type Dialect struct {
	Leader  string
	Trailer string
}

var dialectsByExt = map[string]Dialect{}

func init() {
	register := func(d Dialect, exts ...string) {
		for _, ext := range exts {
			dialectsByExt[ext] = d
		}
	}
	register(Dialect{Leader: "//"},
		".go", ".ts", ".tsx", ".js", ".jsx", ".java", ".kt",
		".c", ".h", ".cpp", ".rs", ".swift", ".scala", ".dart")
	register(Dialect{Leader: "#"},
		".py", ".rb", ".sh", ".bash", ".yaml", ".yml", ".toml", ".tf", ".mk")
	register(Dialect{Leader: "--"}, ".sql", ".lua")
	register(Dialect{Leader: "<!--", Trailer: "-->"},
		".html", ".htm", ".md", ".vue", ".svelte", ".xml")
}

// DialectFor picks the comment dialect for path. The choice depends on the
// file extension alone, never on the caller.
func DialectFor(path string) (Dialect, error) {
	ext := strings.ToLower(filepath.Ext(path))
	d, ok := dialectsByExt[ext]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported file extension %q: no comment dialect", ext)
	}
	return d, nil
}

// BeginLine renders the opening sentinel. Writes always carry both keys,
// even though unit= is optional on read.
func (d Dialect) BeginLine(unitID, generator string) string {
	line := fmt.Sprintf("%s %s unit=%s gen=%s", d.Leader, beginToken, unitID, generator)
	if d.Trailer != "" {
		line += " " + d.Trailer
	}
	return line
}

// EndLine renders the closing sentinel.
func (d Dialect) EndLine() string {
	line := d.Leader + " " + endToken
	if d.Trailer != "" {
		line += " " + d.Trailer
	}
	return line
}

// Wrap fences body between a begin and end sentinel. Trailing newlines on
// body are normalized to exactly one so repeated render/wrap cycles are
// byte-stable.
func (d Dialect) Wrap(unitID, generator, body string) string {
	var sb strings.Builder
	sb.WriteString(d.BeginLine(unitID, generator))
	sb.WriteByte('\n')
	if trimmed := strings.TrimRight(body, "\n"); trimmed != "" {
		sb.WriteString(trimmed)
		sb.WriteByte('\n')
	}
	sb.WriteString(d.EndLine())
	return sb.String()
}

// Region locates one generation unit inside file content. Offsets are byte
// positions into the located string: Start is the first byte of the begin
// line, BodyStart the byte after the begin line's newline, BodyEnd the
// first byte of the end line, and End the byte just past the end line's
// text (its trailing newline, when present, stays outside the region).
type Region struct {
	UnitID    string
	Generator string

	Start     int
	BodyStart int
	BodyEnd   int
	End       int
}

// Body returns the exact substring between the sentinel lines.
func (r *Region) Body(content string) string {
	return content[r.BodyStart:r.BodyEnd]
}

// HasMarker reports whether content carries a begin marker at all. It is a
// cheap pre-check for choosing between Create and Sync; Locate still
// decides whether the markers are sound.
func HasMarker(content string) bool {
	return strings.Contains(content, beginToken)
}

// Locate finds the single sentinel pair in content. It returns
// NoMarkerError when content has no begin marker, and StructuralError for
// unpaired, duplicated, or legacy markers. path is only used to label
// errors.
func Locate(path, content string) (*Region, error) {
	var (
		region    Region
		haveBegin bool
		haveEnd   bool
	)

	offset := 0
	for offset <= len(content) {
		line := content[offset:]
		next := len(content) + 1
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = offset + nl + 1
		}

		switch {
		case strings.Contains(line, beginToken):
			if haveBegin {
				return nil, &StructuralError{
					Path:   path,
					Detail: "more than one begin marker",
					Hint:   "a file holds at most one generation unit",
				}
			}
			unitID, generator, err := parseBegin(path, line)
			if err != nil {
				return nil, err
			}
			region.UnitID = unitID
			region.Generator = generator
			region.Start = offset
			region.BodyStart = min(next, len(content))
			haveBegin = true
		case strings.Contains(line, endToken):
			if !haveBegin {
				return nil, &StructuralError{
					Path:   path,
					Detail: "end marker without a begin marker above it",
				}
			}
			if haveEnd {
				return nil, &StructuralError{
					Path:   path,
					Detail: "more than one end marker",
				}
			}
			region.BodyEnd = offset
			region.End = offset + len(line)
			haveEnd = true
		}

		if next > len(content) {
			break
		}
		offset = next
	}

	if !haveBegin {
		return nil, &NoMarkerError{Path: path}
	}
	if !haveEnd {
		return nil, &StructuralError{
			Path:   path,
			Detail: fmt.Sprintf("begin marker for unit %q has no end marker", region.UnitID),
		}
	}
	return &region, nil
}

// parseBegin reads unit= and gen= off a begin line. A begin line without
// gen= is the retired marker format and is rejected outright rather than
// guessed at.
func parseBegin(path, line string) (unitID, generator string, err error) {
	rest := line[strings.Index(line, beginToken)+len(beginToken):]
	if i := strings.Index(rest, "-->"); i >= 0 {
		rest = rest[:i]
	}
	for _, field := range strings.Fields(rest) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "unit":
			unitID = value
		case "gen":
			generator = value
		}
	}
	if generator == "" {
		return "", "", &StructuralError{
			Path:   path,
			Detail: "begin marker does not name its generator",
			Hint:   "re-create the unit or add gen=<generator> to the begin marker",
		}
	}
	if unitID == "" {
		unitID = generator
	}
	return unitID, generator, nil
}

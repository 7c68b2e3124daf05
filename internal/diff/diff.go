// Package diff renders unified diffs for previewing what a sync or an
// overwrite would change. The edit script comes from Myers' O(ND)
// algorithm over whole lines.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Options tunes diff output. Zero values mean 3 lines of context and
// 4-column tabs.
type Options struct {
	Context  int
	TabWidth int
}

type op byte

const (
	opKeep op = iota
	opAdd
	opDel
)

type edit struct {
	op   op
	text string
	oldN int // 1-based line in old, 0 for additions
	newN int // 1-based line in new, 0 for removals
}

var (
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	addStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("green"))
	delStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
)

// Unified renders a styled unified diff between old and newer. Identical
// inputs yield the empty string.
func Unified(oldPath, newPath string, old, newer []byte, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}
	context := opts.Context
	if context == 0 {
		context = 3
	}
	tabWidth := opts.TabWidth
	if tabWidth == 0 {
		tabWidth = 4
	}

	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}
	if bytes.Equal(old, newer) {
		return ""
	}

	edits := script(lines(string(old)), lines(string(newer)))
	spans := group(edits, context)
	if len(spans) == 0 {
		return ""
	}

	width := terminalWidth()
	var sb strings.Builder
	sb.WriteString(fileStyle.Render("--- "+oldPath) + "\n")
	sb.WriteString(fileStyle.Render("+++ "+newPath) + "\n")
	for _, s := range spans {
		writeHunk(&sb, edits[s.from:s.to], tabWidth, width)
	}
	return sb.String()
}

// script computes a line-level edit script. V vectors are flat int slices
// indexed by diagonal plus offset; trace keeps one snapshot per depth for
// the backtrack.
func script(a, b []string) []edit {
	n, m := len(a), len(b)
	size := n + m
	if size == 0 {
		return nil
	}

	offset := size
	v := make([]int, 2*size+2)
	var trace [][]int

	depth := 0
search:
	for ; depth <= size; depth++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -depth; k <= depth; k += 2 {
			var x int
			if k == -depth || (k != depth && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	var rev []edit
	x, y := n, m
	for d := depth; d >= 0 && (x > 0 || y > 0); d-- {
		vd := trace[d]
		k := x - y
		prevK := k - 1
		if k == -d || (k != d && vd[offset+k-1] < vd[offset+k+1]) {
			prevK = k + 1
		}
		prevX := vd[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			rev = append(rev, edit{op: opKeep, text: a[x-1], oldN: x, newN: y})
			x--
			y--
		}
		if d > 0 {
			if x == prevX {
				rev = append(rev, edit{op: opAdd, text: b[prevY], newN: prevY + 1})
			} else {
				rev = append(rev, edit{op: opDel, text: a[prevX], oldN: prevX + 1})
			}
			x, y = prevX, prevY
		}
	}

	out := make([]edit, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}

// span is a half-open index range into an edit script.
type span struct {
	from, to int
}

// group finds the changed stretches of the script, pads each with context
// lines, and merges stretches whose context would overlap.
func group(edits []edit, context int) []span {
	var spans []span
	for i := 0; i < len(edits); i++ {
		if edits[i].op == opKeep {
			continue
		}

		from := max(i-context, 0)
		to := i
		for to < len(edits) {
			if edits[to].op != opKeep {
				to++
				continue
			}
			run := 0
			j := to
			for j < len(edits) && edits[j].op == opKeep {
				run++
				j++
			}
			if j < len(edits) && run <= context*2 {
				to = j
				continue
			}
			to += min(run, context)
			break
		}

		spans = append(spans, span{from: from, to: to})
		i = to
	}
	return spans
}

func writeHunk(sb *strings.Builder, edits []edit, tabWidth, width int) {
	var oldStart, newStart, oldCount, newCount int
	for _, e := range edits {
		switch e.op {
		case opKeep:
			oldCount++
			newCount++
		case opDel:
			oldCount++
		case opAdd:
			newCount++
		}
		if oldStart == 0 && e.oldN > 0 {
			oldStart = e.oldN
		}
		if newStart == 0 && e.newN > 0 {
			newStart = e.newN
		}
	}

	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount)
	sb.WriteString(hunkStyle.Render(header) + "\n")

	for _, e := range edits {
		text := truncate(expandTabs(e.text, tabWidth), width-2)
		switch e.op {
		case opAdd:
			sb.WriteString(addStyle.Render("+"+text) + "\n")
		case opDel:
			sb.WriteString(delStyle.Render("-"+text) + "\n")
		default:
			sb.WriteString(" " + text + "\n")
		}
	}
}

// isBinary sniffs the first 8 KiB for NUL bytes.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 8192 {
		head = head[:8192]
	}
	return bytes.IndexByte(head, 0) >= 0
}

func lines(s string) []string {
	if s == "" {
		return nil
	}
	out := strings.Split(s, "\n")
	if out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func expandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}
	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	if maxWidth < 4 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// Package input provides the interactive prompts lyrebird uses when a
// command needs an answer it was not given on the command line.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompter asks questions on out and reads answers from in. The reader is
// buffered once so consecutive prompts share the same stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter wired to stdin and stdout.
func New() *Prompter {
	return For(os.Stdin, os.Stdout)
}

// For returns a Prompter reading from in and writing to out.
func For(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints message and returns the line the user types, trimmed. An
// empty answer (or a closed stream) falls back to fallback.
func (p *Prompter) Ask(message, fallback string) string {
	if fallback != "" {
		fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render("("+fallback+")")+": ")
	} else {
		fmt.Fprint(p.out, promptStyle.Render(message)+": ")
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return fallback
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback
	}
	return line
}

// Confirm asks a yes/no question. Enter (or a closed stream) picks the
// default; anything but y/yes counts as no.
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return defaultYes
	}
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return defaultYes
	}
	return line == "y" || line == "yes"
}

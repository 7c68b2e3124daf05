// Package conflict decides what happens when generate targets a file that
// already holds something else. Flags pick a non-interactive strategy;
// without flags the user gets a menu.
package conflict

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/simonhull/lyrebird/internal/diff"
)

// Resolution is the outcome of a conflict decision.
type Resolution int

const (
	Skip Resolution = iota
	Overwrite
	ShowDiff
	Cancel
)

// Conflict describes a file generate could not claim: the path, the
// reason it was refused, and both versions of the content.
type Conflict struct {
	Path     string
	Reason   string
	Existing []byte
	Planned  []byte
}

// Strategy turns a conflict into a resolution. Decide never returns
// ShowDiff; strategies that show diffs loop back to a decision themselves.
type Strategy interface {
	Decide(c Conflict) (Resolution, error)
}

// New picks a strategy from the generate flags. The flags are mutually
// exclusive.
func New(force, skip, diffFirst bool) (Strategy, error) {
	set := 0
	for _, f := range []bool{force, skip, diffFirst} {
		if f {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("--force, --skip, and --diff are mutually exclusive")
	}

	switch {
	case force:
		return forceStrategy{}, nil
	case skip:
		return keepStrategy{}, nil
	case diffFirst:
		return previewStrategy{}, nil
	default:
		return menuStrategy{}, nil
	}
}

// forceStrategy overwrites without asking.
type forceStrategy struct{}

func (forceStrategy) Decide(Conflict) (Resolution, error) {
	return Overwrite, nil
}

// keepStrategy leaves existing files alone without asking.
type keepStrategy struct{}

func (keepStrategy) Decide(Conflict) (Resolution, error) {
	return Skip, nil
}

// previewStrategy shows the diff first, then hands over to the menu.
type previewStrategy struct{}

func (previewStrategy) Decide(c Conflict) (Resolution, error) {
	if err := showDiff(c); err != nil {
		return Cancel, err
	}
	return menuStrategy{}.Decide(c)
}

// menuStrategy prompts with an interactive menu. Picking "show diff"
// displays the diff and returns to the menu.
type menuStrategy struct{}

func (menuStrategy) Decide(c Conflict) (Resolution, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return Cancel, fmt.Errorf("cannot prompt about %s: stdin is not a terminal (use --force or --skip)", c.Path)
	}

	for {
		choice, err := runMenu(c)
		if err != nil || choice != ShowDiff {
			return choice, err
		}
		if err := showDiff(c); err != nil {
			return Cancel, err
		}
	}
}

func runMenu(c Conflict) (Resolution, error) {
	info, err := os.Stat(c.Path)
	if err != nil && !os.IsNotExist(err) {
		return Cancel, fmt.Errorf("checking %s: %w", c.Path, err)
	}

	p := tea.NewProgram(newMenuModel(c, info))
	final, err := p.Run()
	if err != nil {
		return Cancel, fmt.Errorf("showing conflict menu: %w", err)
	}

	m := final.(menuModel)
	if m.picked == nil {
		return Cancel, nil
	}
	return *m.picked, nil
}

// showDiff prints small diffs inline and pages large ones through a
// viewport.
func showDiff(c Conflict) error {
	body := diff.Unified(c.Path+" (on disk)", c.Path+" (generated)", c.Existing, c.Planned, nil)
	if body == "" {
		fmt.Println(mutedStyle.Render("No differences."))
		return nil
	}

	if strings.Count(body, "\n") <= 20 {
		fmt.Println(body)
		return nil
	}

	p := tea.NewProgram(newViewerModel(c.Path, body), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("showing diff: %w", err)
	}
	return nil
}

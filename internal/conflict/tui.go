package conflict

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// menuChoices maps menu rows to resolutions, in display order.
var menuChoices = []struct {
	label string
	res   Resolution
}{
	{"Show what would change", ShowDiff},
	{"Keep the file as it is", Skip},
	{"Replace it with the generated unit", Overwrite},
	{"Cancel", Cancel},
}

type menuModel struct {
	conflict Conflict
	info     os.FileInfo
	cursor   int
	picked   *Resolution
}

func newMenuModel(c Conflict, info os.FileInfo) menuModel {
	return menuModel{conflict: c, info: info}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuChoices)-1 {
			m.cursor++
		}
	case "enter":
		res := menuChoices[m.cursor].res
		m.picked = &res
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder

	b.WriteString(warnStyle.Render("File conflict: ") + titleStyle.Render(m.conflict.Path) + "\n")
	if m.conflict.Reason != "" {
		b.WriteString(mutedStyle.Render("    "+m.conflict.Reason) + "\n")
	}
	if m.info != nil {
		b.WriteString(mutedStyle.Render("    modified "+relativeAge(m.info.ModTime())+", "+humanSize(m.info.Size())) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("    [up/down] move    [enter] choose    [q] cancel") + "\n\n")

	for i, choice := range menuChoices {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+choice.label) + "\n")
		} else {
			b.WriteString("      " + choice.label + "\n")
		}
	}
	return b.String()
}

type viewerModel struct {
	title    string
	body     string
	viewport viewport.Model
	ready    bool
}

func newViewerModel(title, body string) viewerModel {
	return viewerModel{title: title, body: body}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			m.viewport.LineUp(1)
		case "down", "j":
			m.viewport.LineDown(1)
		case "pgup", "b":
			m.viewport.ViewUp()
		case "pgdown", "f", "space":
			m.viewport.ViewDown()
		}

	case tea.WindowSizeMsg:
		// One line of header, one of footer.
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.viewport.SetContent(m.body)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	header := titleStyle.Render(fmt.Sprintf("Diff: %s", m.title))
	footer := mutedStyle.Render("[up/down] scroll    [pgup/pgdn] page    [q] back")
	return header + "\n" + m.viewport.View() + "\n" + footer
}

// relativeAge renders a modification time the way humans talk about it.
func relativeAge(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	}

	buckets := []struct {
		limit time.Duration
		unit  time.Duration
		name  string
	}{
		{time.Hour, time.Minute, "minute"},
		{24 * time.Hour, time.Hour, "hour"},
		{7 * 24 * time.Hour, 24 * time.Hour, "day"},
		{30 * 24 * time.Hour, 7 * 24 * time.Hour, "week"},
		{365 * 24 * time.Hour, 30 * 24 * time.Hour, "month"},
	}
	for _, b := range buckets {
		if d < b.limit {
			n := int(d / b.unit)
			if n == 1 {
				return "1 " + b.name + " ago"
			}
			return fmt.Sprintf("%d %ss ago", n, b.name)
		}
	}

	years := int(d / (365 * 24 * time.Hour))
	if years == 1 {
		return "1 year ago"
	}
	return fmt.Sprintf("%d years ago", years)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

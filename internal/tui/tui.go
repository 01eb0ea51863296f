package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/linereview/model"
)

// --- Styles ---
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	gutterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	selectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))

	// lineStyles maps highlight style identifiers to terminal styles.
	lineStyles = map[string]lipgloss.Style{
		model.DefaultStyles.Reviewed: lipgloss.NewStyle().Background(lipgloss.Color("22")),
		model.DefaultStyles.Modified: lipgloss.NewStyle().Background(lipgloss.Color("58")),
		model.DefaultStyles.Ignored:  lipgloss.NewStyle().Background(lipgloss.Color("236")),
	}
)

// --- Keys ---
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Select   key.Binding
	Escape   key.Binding
	Reviewed key.Binding
	Modified key.Binding
	Ignored  key.Binding
	Clear    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Yank     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Reviewed, k.Modified, k.Ignored, k.Clear, k.Next, k.Yank, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Select, k.Escape, k.Yank},
		{k.Reviewed, k.Modified, k.Ignored, k.Clear},
		{k.Next, k.Prev, k.Quit},
	}
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("ctrl+u", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("ctrl+d", "page down")),
	Select:   key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "select")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unselect")),
	Reviewed: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reviewed")),
	Modified: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "modified")),
	Ignored:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ignored")),
	Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next file")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev file")),
	Yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy ref")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// commandKeys maps bindings to annotator command names.
var commandKeys = []struct {
	binding *key.Binding
	command string
}{
	{&keys.Reviewed, "markReviewed"},
	{&keys.Modified, "markModified"},
	{&keys.Ignored, "markIgnored"},
	{&keys.Clear, "clearReviews"},
}

// --- Model ---

// Model is the terminal review viewer.
type Model struct {
	host     *Host
	viewport viewport.Model
	help     help.Model
	ready    bool
	message  string
	err      error

	copy func(string) error
}

// New creates the viewer for host.
func New(host *Host) Model {
	return Model{
		host: host,
		help: help.New(),
		copy: clipboard.WriteAll,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(1, msg.Height-2)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width

	case highlightsMsg:
		// Redraw only.

	case tea.KeyMsg:
		m.err = nil
		m.message = ""
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.host.Move(-1)
		case key.Matches(msg, keys.Down):
			m.host.Move(1)
		case key.Matches(msg, keys.PageUp):
			m.host.Move(-m.pageSize())
		case key.Matches(msg, keys.PageDown):
			m.host.Move(m.pageSize())
		case key.Matches(msg, keys.Select):
			m.host.ToggleSelection()
		case key.Matches(msg, keys.Escape):
			m.host.ClearSelection()
		case key.Matches(msg, keys.Next):
			m.host.Switch(1)
		case key.Matches(msg, keys.Prev):
			m.host.Switch(-1)
		case key.Matches(msg, keys.Yank):
			ref := m.host.Reference()
			if err := m.copy(ref); err != nil {
				m.err = fmt.Errorf("copy to clipboard: %w", err)
			} else {
				m.message = "copied " + ref
			}
		default:
			for _, ck := range commandKeys {
				if key.Matches(msg, *ck.binding) {
					if err := m.host.Invoke(ck.command); err != nil {
						m.err = err
					}
					break
				}
			}
		}
	}

	if m.ready {
		m.syncViewport()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return faintStyle.Render("Loading...")
	}
	return m.viewport.View() + "\n" + m.statusLine() + "\n" + m.help.View(keys)
}

func (m Model) pageSize() int {
	if m.viewport.Height > 0 {
		return m.viewport.Height
	}
	return 10
}

// syncViewport re-renders the file and keeps the cursor visible.
func (m *Model) syncViewport() {
	s := m.host.snapshot()
	m.viewport.SetContent(renderLines(s))

	if s.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(s.cursor)
	} else if s.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(s.cursor - m.viewport.Height + 1)
	}
}

func (m Model) statusLine() string {
	s := m.host.snapshot()
	var b strings.Builder

	b.WriteString(headerStyle.Render(filepath.Base(s.path)))
	b.WriteString(faintStyle.Render(fmt.Sprintf(" [%d/%d] ", s.index+1, s.count)))

	var reviewed, modified, ignored int
	for _, style := range s.styles {
		switch style {
		case model.DefaultStyles.Reviewed:
			reviewed++
		case model.DefaultStyles.Modified:
			modified++
		case model.DefaultStyles.Ignored:
			ignored++
		}
	}
	b.WriteString(fmt.Sprintf("%d reviewed, %d modified, %d ignored", reviewed, modified, ignored))

	if s.selection != nil {
		b.WriteString(selectionStyle.Render(fmt.Sprintf("  sel %d-%d", s.selection.Start+1, s.selection.End+1)))
	}
	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(m.err.Error()))
	} else if m.message != "" {
		b.WriteString("  " + faintStyle.Render(m.message))
	}
	return b.String()
}

// renderLines draws the gutter and the highlighted text of every line.
func renderLines(s snapshot) string {
	width := len(fmt.Sprint(len(s.lines)))
	var b strings.Builder
	for i, line := range s.lines {
		marker := " "
		if s.selection != nil && i >= s.selection.Start && i <= s.selection.End {
			marker = selectionStyle.Render("▌")
		}
		if i == s.cursor {
			marker = cursorStyle.Render(">")
		}
		b.WriteString(marker)
		b.WriteString(gutterStyle.Render(fmt.Sprintf("%*d ", width, i+1)))

		if style, ok := lineStyles[s.styles[i]]; ok {
			b.WriteString(style.Render(line))
		} else {
			b.WriteString(line)
		}
		if i < len(s.lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

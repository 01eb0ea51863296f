package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/linereview/model"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pathStyle    = lipgloss.NewStyle()
)

// FetchFunc collects the review summaries shown by StatusModel.
type FetchFunc func() ([]model.Summary, error)

// --- Messages ---
type summariesMsg []model.Summary

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// StatusModel shows a spinner while review states are fetched, then prints
// the summaries and quits.
type StatusModel struct {
	fetch     FetchFunc
	spinner   spinner.Model
	state     state
	summaries []model.Summary
	err       error
}

// NewStatus creates a StatusModel around fetch.
func NewStatus(fetch FetchFunc) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return StatusModel{
		fetch:   fetch,
		spinner: s,
		state:   stateProcessing,
	}
}

// Summaries returns what was fetched, once the program has finished.
func (m StatusModel) Summaries() []model.Summary { return m.summaries }

// Err returns the fetch error, if any.
func (m StatusModel) Err() error { return m.err }

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case summariesMsg:
		m.state = stateSummary
		m.summaries = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m StatusModel) View() string {
	switch m.state {
	case stateProcessing:
		return fmt.Sprintf("%s Fetching review state...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error()) + "\n"
	case stateSummary:
		return RenderSummaries(m.summaries)
	default:
		return ""
	}
}

// RenderSummaries formats one line per file plus a total.
func RenderSummaries(summaries []model.Summary) string {
	var b strings.Builder

	if len(summaries) == 0 {
		b.WriteString(faintStyle.Render("Nothing to review."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render("Review status"))
	b.WriteString("\n\n")

	var total model.Summary
	for _, s := range summaries {
		if s.Err != nil {
			b.WriteString(fmt.Sprintf("  %s %s\n", pathStyle.Render(s.Path), errorStyle.Render(s.Err.Error())))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			pathStyle.Render(s.Path),
			successStyle.Render(fmt.Sprintf("%d reviewed", s.Reviewed)),
			warnStyle.Render(fmt.Sprintf("%d modified", s.Modified)),
			faintStyle.Render(fmt.Sprintf("%d ignored", s.Ignored)),
		))
		total.Reviewed += s.Reviewed
		total.Modified += s.Modified
		total.Ignored += s.Ignored
	}

	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("Total: %d reviewed, %d modified, %d ignored",
		total.Reviewed, total.Modified, total.Ignored)))
	b.WriteString("\n")
	return b.String()
}

func (m StatusModel) run() tea.Msg {
	summaries, err := m.fetch()
	if err != nil {
		return errorMsg{err}
	}
	return summariesMsg(summaries)
}

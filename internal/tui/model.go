// Package tui renders the tracker in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/tracker"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("51")).
			Bold(true).
			Padding(0, 1)

	subjectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true).
			MarginTop(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("238"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// row is one selectable line: a subject header (topic == "") or a topic.
type row struct {
	subject string
	topic   string
}

// Model is the Bubble Tea model over a tracker controller.
type Model struct {
	ctrl   *tracker.Controller
	board  domain.BoardView
	rows   []row
	cursor int

	adding bool
	input  textinput.Model
	bar    progress.Model
	status string
}

// NewModel creates a model showing the controller's current board.
func NewModel(ctrl *tracker.Controller) Model {
	in := textinput.New()
	in.Placeholder = "new topic"
	in.CharLimit = 120

	m := Model{
		ctrl:  ctrl,
		input: in,
		bar: progress.New(
			progress.WithGradient("#00ffff", "#00ff00"),
			progress.WithWidth(30),
		),
	}
	m.refresh()
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctrl *tracker.Controller) error {
	_, err := tea.NewProgram(NewModel(ctrl)).Run()
	return err
}

func (m *Model) refresh() {
	m.board = m.ctrl.Board()
	m.rows = m.rows[:0]
	for _, s := range m.board.Subjects {
		m.rows = append(m.rows, row{subject: s.Name})
		for _, t := range s.Topics {
			m.rows = append(m.rows, row{subject: s.Name, topic: t.Name})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.adding {
		return m.updateAdding(key)
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "r":
		m.toggle(domain.FieldReviewed)
	case "s":
		m.toggle(domain.FieldStudied)
	case "x":
		if r, ok := m.current(); ok && r.topic != "" {
			_, err := m.ctrl.Remove(r.subject, r.topic)
			m.after(err)
		}
	case "a":
		if _, ok := m.current(); ok {
			m.adding = true
			m.input.SetValue("")
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m Model) updateAdding(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.adding = false
		m.input.Blur()
		if r, ok := m.current(); ok {
			_, err := m.ctrl.Add(r.subject, m.input.Value())
			m.after(err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *Model) toggle(field domain.Field) {
	r, ok := m.current()
	if !ok || r.topic == "" {
		return
	}
	_, err := m.ctrl.Toggle(r.subject, r.topic, field)
	m.after(err)
}

func (m *Model) after(err error) {
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
	m.refresh()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Study tracker"))
	b.WriteString("  ")
	b.WriteString(m.bar.ViewAs(float64(m.board.Global.Pct) / 100))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" %d/%d", m.board.Global.Done, m.board.Global.Total)))
	b.WriteString("\n")

	i := 0
	for _, s := range m.board.Subjects {
		line := subjectStyle.Render(s.Name) + "  " +
			m.bar.ViewAs(float64(s.Progress.Pct)/100) +
			dimStyle.Render(fmt.Sprintf(" %d/%d complete", s.Progress.Done, s.Progress.Total))
		b.WriteString(m.mark(i, line))
		b.WriteString("\n")
		i++
		for _, t := range s.Topics {
			b.WriteString(m.mark(i, topicLine(t)))
			b.WriteString("\n")
			i++
		}
	}

	b.WriteString("\n")
	if m.adding {
		if r, ok := m.current(); ok {
			b.WriteString(fmt.Sprintf("Add to %s: %s\n", r.subject, m.input.View()))
		}
	}
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ move • r reviewed • s studied • a add • x remove • q quit"))
	return b.String()
}

func (m Model) mark(i int, line string) string {
	if i == m.cursor {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

func topicLine(t domain.TopicView) string {
	box := func(on bool, label string) string {
		if on {
			return "[x] " + label
		}
		return "[ ] " + label
	}
	line := fmt.Sprintf("  %-28s %s  %s", t.Name, box(t.Reviewed, "Reviewed"), box(t.Studied, "Studied"))
	if t.Date != "" {
		line += "  " + t.Date
	}
	if t.Complete {
		return doneStyle.Render(line)
	}
	return line
}

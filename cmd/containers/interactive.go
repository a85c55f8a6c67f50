package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxShown is how many past commands the view keeps on screen.
const maxShown = 12

type entry struct {
	line   string
	output string
	failed bool
}

type interactiveModel struct {
	env     *environment
	input   textinput.Model
	entries []entry
	recall  int
}

func newInteractiveModel(env *environment) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "Add 3 7"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{env: env, input: ti, recall: -1}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			m.run(m.input.Value())
			m.input.SetValue("")
			m.recall = -1
			return m, nil

		case "up":
			if n := len(m.entries); n > 0 && m.recall < n-1 {
				m.recall++
				m.input.SetValue(m.entries[n-1-m.recall].line)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.entries[len(m.entries)-1-m.recall].line)
				m.input.CursorEnd()
			} else {
				m.recall = -1
				m.input.SetValue("")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) run(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	out, err := execLine(m.env.obj, line)
	e := entry{line: line, output: out}
	if err != nil {
		e.output = errorText(err)
		e.failed = true
	}
	m.entries = append(m.entries, e)
}

// status renders the live counters of the bound container.
func (m *interactiveModel) status() string {
	var parts []string
	if v, err := m.env.obj.Call("Num"); err == nil {
		parts = append(parts, fmt.Sprintf("Num: %v", v))
	}
	if _, ok := m.env.obj.Class().Methods["GetMaxIndex"]; ok {
		if v, err := m.env.obj.Call("GetMaxIndex"); err == nil {
			parts = append(parts, fmt.Sprintf("GetMaxIndex: %v", v))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Containers"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.env.cfg.describe()))
	b.WriteString("  ")
	b.WriteString(m.status())
	b.WriteString("\n\n")

	start := 0
	if len(m.entries) > maxShown {
		start = len(m.entries) - maxShown
	}
	for _, e := range m.entries[start:] {
		b.WriteString(commandStyle.Render("> " + e.line))
		b.WriteString("\n")
		if e.output != "" {
			if e.failed {
				b.WriteString(errorStyle.Render(e.output))
			} else {
				b.WriteString(resultStyle.Render(e.output))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • help methods • esc quit"))
	return b.String()
}

func runInteractive(env *environment) error {
	p := tea.NewProgram(newInteractiveModel(env), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

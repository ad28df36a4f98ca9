package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Step is the wizard's current screen.
type Step int

const (
	StepName Step = iota
	StepTemplate
	StepOptions
	StepDone
)

// ProjectConfig is what the wizard collects.
type ProjectConfig struct {
	Name     string
	Template string
	Port     int
	Strict   bool
	Cache    bool
}

// Templates available to `psr init`.
var Templates = []struct {
	Name        string
	Description string
}{
	{"blank", "Empty project with a hello-world component"},
	{"counter", "Signal-driven counter example"},
	{"todo", "Todo list with list rendering and events"},
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Enter  key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x")),
	Enter:  key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q", "esc")),
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the wizard's bubbletea state.
type Model struct {
	step     Step
	nameIn   textinput.Model
	selected int
	options  []option
	config   ProjectConfig
	quitting bool
	err      error
}

type option struct {
	label string
	on    bool
}

// NewModel seeds the wizard, projectName may be empty.
func NewModel(projectName string) Model {
	in := textinput.New()
	in.Placeholder = "my-app"
	in.SetValue(projectName)
	in.Focus()
	in.CharLimit = 64
	return Model{
		step:   StepName,
		nameIn: in,
		options: []option{
			{label: "Strict mode (stop at first error)", on: false},
			{label: "Compile cache", on: true},
		},
		config: ProjectConfig{Port: 5173},
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.nameIn, cmd = m.nameIn.Update(msg)
		return m, cmd
	}
	if key.Matches(keyMsg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.step {
	case StepName:
		if key.Matches(keyMsg, keys.Enter) {
			name := strings.TrimSpace(m.nameIn.Value())
			if err := ValidateProjectName(name); err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.config.Name = name
			m.step = StepTemplate
			return m, nil
		}
		var cmd tea.Cmd
		m.nameIn, cmd = m.nameIn.Update(msg)
		return m, cmd

	case StepTemplate:
		switch {
		case key.Matches(keyMsg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(keyMsg, keys.Down):
			if m.selected < len(Templates)-1 {
				m.selected++
			}
		case key.Matches(keyMsg, keys.Enter):
			m.config.Template = Templates[m.selected].Name
			m.selected = 0
			m.step = StepOptions
		}
		return m, nil

	case StepOptions:
		switch {
		case key.Matches(keyMsg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(keyMsg, keys.Down):
			if m.selected < len(m.options)-1 {
				m.selected++
			}
		case key.Matches(keyMsg, keys.Toggle):
			m.options[m.selected].on = !m.options[m.selected].on
		case key.Matches(keyMsg, keys.Enter):
			m.config.Strict = m.options[0].on
			m.config.Cache = m.options[1].on
			m.step = StepDone
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting && m.step != StepDone {
		return "Cancelled.\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("PSR project setup"))
	b.WriteString("\n\n")

	switch m.step {
	case StepName:
		b.WriteString("Project name:\n")
		b.WriteString(m.nameIn.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errStyle.Render(m.err.Error()))
			b.WriteString("\n")
		}
	case StepTemplate:
		b.WriteString("Select a template:\n")
		for i, t := range Templates {
			line := fmt.Sprintf("  %s - %s", t.Name, t.Description)
			if i == m.selected {
				line = selectedStyle.Render("> " + strings.TrimSpace(line))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	case StepOptions:
		b.WriteString("Options (space toggles):\n")
		for i, opt := range m.options {
			mark := "[ ]"
			if opt.on {
				mark = "[x]"
			}
			line := fmt.Sprintf("  %s %s", mark, opt.label)
			if i == m.selected {
				line = selectedStyle.Render("> " + strings.TrimSpace(line))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	case StepDone:
		b.WriteString(selectedStyle.Render("Ready."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter continue / q quit"))
	b.WriteString("\n")
	return b.String()
}

// Config returns the collected configuration.
func (m Model) Config() (ProjectConfig, bool) {
	return m.config, m.step == StepDone
}

// RunWizard drives the interactive flow and returns the collected
// configuration, ok false when the user cancelled.
func RunWizard(projectName string) (ProjectConfig, bool, error) {
	p := tea.NewProgram(NewModel(projectName))
	final, err := p.Run()
	if err != nil {
		return ProjectConfig{}, false, err
	}
	m, ok := final.(Model)
	if !ok {
		return ProjectConfig{}, false, fmt.Errorf("unexpected wizard state")
	}
	cfg, done := m.Config()
	return cfg, done, nil
}

// ValidateProjectName enforces npm-compatible directory names.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("project name too long")
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		ok := ch == '-' || ch == '_' ||
			(ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if !ok {
			return fmt.Errorf("project name must be lowercase letters, digits, - or _")
		}
	}
	return nil
}

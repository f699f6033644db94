package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/mswasm-runtime/config"
	"github.com/wippyai/mswasm-runtime/programs"
	"github.com/wippyai/mswasm-runtime/tag"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var strategies = []tag.Strategy{tag.PerWord, tag.Packed, tag.Disabled}

type interactiveModel struct {
	err      error
	cfg      *config.Config
	result   *outcome
	programs []*programs.Program
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectProgram modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(cfg *config.Config) *interactiveModel {
	return &interactiveModel{
		cfg:      cfg,
		programs: programs.All(),
		state:    stateSelectProgram,
	}
}

type runResultMsg struct {
	err    error
	result *outcome
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeResult()
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				m.closeResult()
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectProgram && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectProgram && m.selected < len(m.programs)-1 {
				m.selected++
			}

		case "t":
			if m.state == stateSelectProgram {
				m.cfg.Memory.TagStrategy = nextStrategy(m.cfg.Memory.TagStrategy)
			}

		case "enter":
			switch m.state {
			case stateSelectProgram:
				m.prepareInput()
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				return m, m.runProgram

			case stateShowResult:
				m.reset()
			}

		case "esc":
			switch m.state {
			case stateInputArgs, stateShowResult:
				m.reset()
			}
		}

	case runResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.closeResult()
	m.state = stateSelectProgram
	m.err = nil
}

func (m *interactiveModel) closeResult() {
	if m.result != nil {
		_ = m.result.inst.Close(context.Background())
		m.result = nil
	}
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "space separated"
	ti.Prompt = "args: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) runProgram() tea.Msg {
	p := m.programs[m.selected]
	args := strings.Fields(m.input.Value())

	res, err := execute(context.Background(), m.cfg, p.Name, args, nil, nil)
	return runResultMsg{result: res, err: err}
}

func nextStrategy(s tag.Strategy) tag.Strategy {
	for i, c := range strategies {
		if c == s {
			return strategies[(i+1)%len(strategies)]
		}
	}
	return strategies[0]
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MS-Wasm Runner"))
	b.WriteString(" tags: ")
	b.WriteString(typeStyle.Render(m.cfg.Memory.TagStrategy.String()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectProgram:
		b.WriteString("Select a program to run:\n\n")
		for i, p := range m.programs {
			line := fmt.Sprintf("%-16s %s", p.Name, p.Description)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • t tag strategy • q quit"))

	case stateInputArgs:
		p := m.programs[m.selected]
		b.WriteString(fmt.Sprintf("Running %s\n\n", funcStyle.Render(p.Name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		p := m.programs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(p.Name)))
		b.WriteString(m.formatResult())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatResult() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	var b strings.Builder
	res := m.result
	if res.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("trap: %v", res.err)))
	} else {
		b.WriteString(resultStyle.Render(fmt.Sprintf("exit status %d", res.code)))
	}
	b.WriteString("\n\n")
	if res.stdout != "" {
		b.WriteString(res.stdout)
		if !strings.HasSuffix(res.stdout, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(renderSegments(res.inst.Store()))
	return b.String()
}

func runInteractive(cfg *config.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

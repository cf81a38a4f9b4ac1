package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Confirm Prompt
// =============================================================================

type confirmModel struct {
	question string
	answer   bool
	decided  bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "y", "Y", "enter":
			m.answer = true
			m.decided = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.answer = false
			m.decided = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.decided {
		return ""
	}
	return m.question + " " + StyleDim.Render("[Y/n]") + " "
}

// promptConfirm asks a yes/no question. Enter and "y" confirm.
func promptConfirm(question string) (bool, error) {
	p := tea.NewProgram(confirmModel{question: question})
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("run prompt: %w", err)
	}
	return final.(confirmModel).answer, nil
}

// =============================================================================
// Text Input Prompt
// =============================================================================

type inputModel struct {
	prompt    string
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newInputModel(prompt, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60
	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.submitted = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.prompt + "\n" + m.input.View() + "\n" + StyleDim.Render("enter to submit, esc to cancel")
}

// promptInput asks for a single line of text. Returns an empty string when
// the user cancels.
func promptInput(prompt, placeholder string) (string, error) {
	p := tea.NewProgram(newInputModel(prompt, placeholder))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}

	m := final.(inputModel)
	if m.cancelled {
		return "", nil
	}
	return strings.TrimSpace(m.input.Value()), nil
}

// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// ConfirmAction represents the user's answer in the confirm prompt.
type ConfirmAction int

const (
	// ActionNone indicates no answer was given.
	ActionNone ConfirmAction = iota
	// ActionConfirmed indicates the user accepted.
	ActionConfirmed
	// ActionDeclined indicates the user refused or quit.
	ActionDeclined
)

type keyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab"), key.WithHelp("←/→", "choose")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("q", "cancel")),
}

type confirmModel struct {
	question string
	detail   string
	yes      bool
	action   ConfirmAction
}

func newConfirmModel(question, detail string) *confirmModel {
	return &confirmModel{question: question, detail: detail}
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Yes):
		m.yes = true
		m.action = ActionConfirmed
		return m, tea.Quit
	case key.Matches(keyMsg, keys.No), key.Matches(keyMsg, keys.Quit):
		m.yes = false
		m.action = ActionDeclined
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, keys.Submit):
		if m.yes {
			m.action = ActionConfirmed
		} else {
			m.action = ActionDeclined
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.action != ActionNone {
		return ""
	}

	yesStyle, noStyle := buttonStyle, activeNoStyle
	if m.yes {
		yesStyle, noStyle = activeYesStyle, buttonStyle
	}
	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		yesStyle.Render(" Yes "),
		lipgloss.NewStyle().Padding(0, 1).Render(""),
		noStyle.Render(" No "),
	)

	parts := []string{questionStyle.Render(m.question)}
	if m.detail != "" {
		parts = append(parts, detailStyle.Render(m.detail))
	}
	help := fmt.Sprintf("%s | %s | %s | %s",
		keys.Yes.Help().Key+" "+keys.Yes.Help().Desc,
		keys.No.Help().Key+" "+keys.No.Help().Desc,
		keys.Toggle.Help().Key+" "+keys.Toggle.Help().Desc,
		keys.Submit.Help().Key+" "+keys.Submit.Help().Desc,
	)
	parts = append(parts, buttons, helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

var (
	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	buttonStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 2).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("237"))

	activeYesStyle = buttonStyle.Copy().
			Background(lipgloss.Color("34")).
			Foreground(lipgloss.Color("0")).
			Bold(true)

	activeNoStyle = buttonStyle.Copy().
			Background(lipgloss.Color("161")).
			Foreground(lipgloss.Color("230")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Confirm asks a yes/no question in the terminal. The default answer is no.
func Confirm(question, detail string) (bool, error) {
	finalModel, err := runProgram(newConfirmModel(question, detail))
	if err != nil {
		return false, err
	}

	if typed, ok := finalModel.(*confirmModel); ok {
		return typed.action == ActionConfirmed, nil
	}

	return false, fmt.Errorf("unexpected program result")
}

// ConfirmOverwrite asks whether an existing column may be replaced.
func ConfirmOverwrite(column string) (bool, error) {
	return Confirm(
		fmt.Sprintf("Column '%s' already exists. Overwrite?", column),
		"Existing values will be replaced with freshly downloaded texts.",
	)
}

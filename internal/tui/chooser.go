package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/hue-attention/internal/tui/components"
	"github.com/angristan/hue-attention/internal/tui/messages"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

// ErrAborted is returned when the user quits a prompt without choosing
var ErrAborted = errors.New("aborted by user")

// Choice is the outcome of a chooser prompt
type Choice struct {
	// Index of the selected option, -1 for a manual entry
	Index int
	// Text typed in manual entry mode
	Manual string
}

// ChooserModel lets the user pick one option from a list. When manualLabel
// is set, a final entry switches to free text input.
type ChooserModel struct {
	title       string
	options     []string
	manualLabel string
	inputPrompt string

	selected int
	manual   bool
	input    textinput.Model

	choice  Choice
	done    bool
	aborted bool
}

// NewChooserModel creates a chooser over options
func NewChooserModel(title string, options []string, manualLabel string) ChooserModel {
	ti := textinput.New()
	ti.Placeholder = "192.168.1.x"
	ti.CharLimit = 45

	return ChooserModel{
		title:       title,
		options:     options,
		manualLabel: manualLabel,
		inputPrompt: "Enter a value",
		input:       ti,
	}
}

// WithInputPrompt sets the text shown above the manual entry field
func (m ChooserModel) WithInputPrompt(prompt string) ChooserModel {
	if prompt != "" {
		m.inputPrompt = prompt
	}
	return m
}

// Init initializes the chooser
func (m ChooserModel) Init() tea.Cmd {
	if len(m.options) == 0 && m.manualLabel != "" {
		return func() tea.Msg { return enterManualMsg{} }
	}
	return nil
}

type enterManualMsg struct{}

func (m ChooserModel) entries() int {
	if m.manualLabel != "" {
		return len(m.options) + 1
	}
	return len(m.options)
}

func (m ChooserModel) enterManual() (ChooserModel, tea.Cmd) {
	m.manual = true
	m.input.Focus()
	return m, textinput.Blink
}

// Update handles messages
func (m ChooserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case enterManualMsg:
		return m.enterManual()

	case messages.AbortMsg:
		m.aborted = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}

		if m.manual {
			switch msg.String() {
			case "enter":
				value := strings.TrimSpace(m.input.Value())
				if value == "" {
					return m, nil
				}
				m.choice = Choice{Index: -1, Manual: value}
				m.done = true
				return m, tea.Quit
			case "esc":
				if len(m.options) == 0 {
					m.aborted = true
					return m, tea.Quit
				}
				m.manual = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < m.entries()-1 {
				m.selected++
			}
		case "m":
			if m.manualLabel != "" {
				return m.enterManual()
			}
		case "enter":
			if m.selected < len(m.options) {
				m.choice = Choice{Index: m.selected}
				m.done = true
				return m, tea.Quit
			}
			if m.manualLabel != "" {
				return m.enterManual()
			}
		case "q", "esc":
			m.aborted = true
			return m, tea.Quit
		default:
			// Digits jump straight to an option
			if n, ok := digit(msg.String()); ok && n >= 1 && n <= len(m.options) {
				m.selected = n - 1
			}
		}
	}

	return m, nil
}

func digit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '0'), true
}

// View renders the chooser
func (m ChooserModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(components.RenderHeader(m.title, ""))
	b.WriteString("\n\n")

	if m.manual {
		b.WriteString(m.inputPrompt + ":\n\n")
		b.WriteString(styles.StyleInputFocused.Render(m.input.View()))
		help := "enter confirm • esc back"
		if len(m.options) == 0 {
			help = "enter confirm • esc cancel"
		}
		b.WriteString("\n" + styles.StyleHelp.Render(help) + "\n")
		return b.String()
	}

	for i, option := range m.options {
		b.WriteString(m.renderEntry(i, fmt.Sprintf("%d) %s", i+1, option)))
	}
	if m.manualLabel != "" {
		b.WriteString("\n" + m.renderEntry(len(m.options), m.manualLabel))
	}

	help := "↑/↓ navigate • enter select • q quit"
	if m.manualLabel != "" {
		help = "↑/↓ navigate • enter select • m manual • q quit"
	}
	b.WriteString(styles.StyleHelp.Render(help) + "\n")

	return b.String()
}

func (m ChooserModel) renderEntry(i int, label string) string {
	cursor := "  "
	style := styles.StyleItem
	if i == m.selected {
		cursor = "> "
		style = styles.StyleItemSelected
	}
	return cursor + style.Render(label) + "\n"
}

// Result returns the choice once the chooser has finished
func (m ChooserModel) Result() (Choice, error) {
	if m.aborted || !m.done {
		return Choice{}, ErrAborted
	}
	return m.choice, nil
}

// Choose runs an interactive chooser on the terminal. The prompt is drawn on
// stderr so stdout stays clean for command output.
func Choose(title string, options []string, manualLabel, manualPrompt string) (Choice, error) {
	model := NewChooserModel(title, options, manualLabel).WithInputPrompt(manualPrompt)
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return Choice{}, err
	}
	return final.(ChooserModel).Result()
}

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/hue-attention/internal/tui/messages"
	"github.com/angristan/hue-attention/internal/tui/styles"
)

// SpinnerModel shows a spinner while a background task runs
type SpinnerModel struct {
	label   string
	hint    string
	spinner spinner.Model

	task   func(ctx context.Context) (any, error)
	ctx    context.Context
	cancel context.CancelFunc

	value   any
	err     error
	done    bool
	aborted bool
}

// NewSpinnerModel creates a spinner around task. hint is shown below the
// label, e.g. instructions for the user while waiting.
func NewSpinnerModel(ctx context.Context, label, hint string, task func(ctx context.Context) (any, error)) SpinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StyleSpinner

	ctx, cancel := context.WithCancel(ctx)

	return SpinnerModel{
		label:   label,
		hint:    hint,
		spinner: sp,
		task:    task,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init starts the spinner and the task
func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCmd())
}

func (m SpinnerModel) runCmd() tea.Cmd {
	return func() tea.Msg {
		value, err := m.task(m.ctx)
		return messages.TaskDoneMsg{Value: value, Err: err}
	}
}

// Update handles messages
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.cancel()
			m.aborted = true
			return m, tea.Quit
		}

	case messages.AbortMsg:
		m.cancel()
		m.aborted = true
		return m, tea.Quit

	case messages.TaskDoneMsg:
		m.cancel()
		m.value = msg.Value
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner
func (m SpinnerModel) View() string {
	if m.aborted {
		return ""
	}
	if m.done {
		if m.err != nil {
			return styles.StyleError.Render("✗ "+m.label) + "\n"
		}
		return styles.StyleSuccess.Render("✓ "+m.label) + "\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.label))
	if m.hint != "" {
		b.WriteString("\n" + styles.StylePrimary.Render(m.hint) + "\n")
	}
	return b.String()
}

// Result returns the task outcome once the spinner has finished
func (m SpinnerModel) Result() (any, error) {
	if m.aborted || !m.done {
		return nil, ErrAborted
	}
	return m.value, m.err
}

// Spin runs task behind a spinner drawn on stderr and returns its result
func Spin[T any](ctx context.Context, label, hint string, task func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	model := NewSpinnerModel(ctx, label, hint, func(ctx context.Context) (any, error) {
		return task(ctx)
	})
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return zero, err
	}

	value, err := final.(SpinnerModel).Result()
	if err != nil {
		return zero, err
	}
	typed, _ := value.(T)
	return typed, nil
}

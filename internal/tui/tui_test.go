package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/angristan/hue-attention/internal/tui/messages"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestChooserSelect(t *testing.T) {
	m := NewChooserModel("Select a light", []string{"1: Lamp", "2: Desk", "3: Hall"}, "")

	final := send(m, "down", "j", "down", "up", "enter").(ChooserModel)
	choice, err := final.Result()
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if choice.Index != 1 {
		t.Errorf("Expected index 1, got %d", choice.Index)
	}
}

func TestChooserDigitJump(t *testing.T) {
	m := NewChooserModel("Select", []string{"a", "b", "c"}, "")

	final := send(m, "3", "9", "enter").(ChooserModel)
	choice, _ := final.Result()
	if choice.Index != 2 {
		t.Errorf("Expected index 2, got %d", choice.Index)
	}
}

func TestChooserStaysInBounds(t *testing.T) {
	m := NewChooserModel("Select", []string{"a", "b"}, "")

	final := send(m, "up", "up", "enter").(ChooserModel)
	if choice, _ := final.Result(); choice.Index != 0 {
		t.Errorf("Expected index 0, got %d", choice.Index)
	}

	final = send(m, "down", "down", "down", "enter").(ChooserModel)
	if choice, _ := final.Result(); choice.Index != 1 {
		t.Errorf("Expected index 1, got %d", choice.Index)
	}
}

func TestChooserManualEntry(t *testing.T) {
	m := NewChooserModel("Select a bridge", []string{"10.0.0.2"}, "Enter IP manually...")

	// Move to the manual entry, type an address and confirm
	final := send(m, "down", "enter", "1", "0", ".", "0", ".", "0", ".", "9", "enter").(ChooserModel)
	choice, err := final.Result()
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if choice.Index != -1 || choice.Manual != "10.0.0.9" {
		t.Errorf("Expected manual entry 10.0.0.9, got %+v", choice)
	}
}

func TestChooserManualEscGoesBack(t *testing.T) {
	m := NewChooserModel("Select a bridge", []string{"10.0.0.2"}, "Enter IP manually...")

	final := send(m, "m", "esc", "enter").(ChooserModel)
	choice, err := final.Result()
	if err != nil {
		t.Fatalf("Result returned error: %v", err)
	}
	if choice.Index != 0 {
		t.Errorf("Expected first bridge after going back, got %+v", choice)
	}
}

func TestChooserOnlyManual(t *testing.T) {
	m := NewChooserModel("No bridges found", nil, "Enter IP manually...").WithInputPrompt("Bridge IP")

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Expected Init to switch to manual entry")
	}
	next, _ := m.Update(cmd())

	if !strings.Contains(next.View(), "Bridge IP:") {
		t.Errorf("Expected manual entry view, got %q", next.View())
	}
}

func TestChooserAbort(t *testing.T) {
	for _, k := range []string{"q", "esc", "ctrl+c"} {
		m := NewChooserModel("Select", []string{"a"}, "")
		final := send(m, k).(ChooserModel)
		if _, err := final.Result(); !errors.Is(err, ErrAborted) {
			t.Errorf("%s: expected ErrAborted, got %v", k, err)
		}
	}
}

func TestChooserView(t *testing.T) {
	m := NewChooserModel("Select a light", []string{"1: Lamp", "2: Desk"}, "")
	view := m.View()

	for _, want := range []string{"Select a light", "1) 1: Lamp", "2) 2: Desk", "enter select"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q:\n%s", want, view)
		}
	}
}

func TestSpinnerModelDone(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "Pairing", "Press the link button", func(ctx context.Context) (any, error) {
		return "user", nil
	})

	if !strings.Contains(m.View(), "Press the link button") {
		t.Errorf("Expected hint in view, got %q", m.View())
	}

	next, cmd := m.Update(messages.TaskDoneMsg{Value: "user"})
	if cmd == nil {
		t.Error("Expected quit command after task completion")
	}
	value, err := next.(SpinnerModel).Result()
	if err != nil || value != "user" {
		t.Errorf("Expected user, got %v (%v)", value, err)
	}
}

func TestSpinnerModelRunsTask(t *testing.T) {
	m := NewSpinnerModel(context.Background(), "Working", "", func(ctx context.Context) (any, error) {
		return nil, errors.New("nope")
	})

	msg := m.runCmd()()
	done, ok := msg.(messages.TaskDoneMsg)
	if !ok {
		t.Fatalf("Expected TaskDoneMsg, got %T", msg)
	}
	if done.Err == nil || done.Err.Error() != "nope" {
		t.Errorf("Expected task error, got %v", done.Err)
	}
}

func TestSpinnerModelAbortCancelsTask(t *testing.T) {
	var taskCtx context.Context
	m := NewSpinnerModel(context.Background(), "Waiting", "", func(ctx context.Context) (any, error) {
		taskCtx = ctx
		return nil, nil
	})
	m.runCmd()()

	next, _ := m.Update(key("ctrl+c"))
	if _, err := next.(SpinnerModel).Result(); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted, got %v", err)
	}
	if taskCtx.Err() == nil {
		t.Error("Expected the task context to be cancelled")
	}
}

func TestPrompterChoose(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("7\nfoo\n2\n"), Out: &out}

	idx, err := p.Choose("Select a light", []string{"1: Lamp", "3: Hall"})
	if err != nil {
		t.Fatalf("Choose failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("Expected index 1, got %d", idx)
	}
	if strings.Count(out.String(), "Invalid selection") != 2 {
		t.Errorf("Expected two retries, output:\n%s", out.String())
	}
}

func TestPrompterChooseEOF(t *testing.T) {
	p := &Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}

	if _, err := p.Choose("Select", []string{"a"}); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted on EOF, got %v", err)
	}
}

func TestPrompterChooseOrEnter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		options []string
		want    Choice
	}{
		{"pick option", "1\n", []string{"10.0.0.2"}, Choice{Index: 0}},
		{"manual after list", "2\n10.0.0.9\n", []string{"10.0.0.2"}, Choice{Index: -1, Manual: "10.0.0.9"}},
		{"manual only", "\n10.0.0.7", nil, Choice{Index: -1, Manual: "10.0.0.7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prompter{In: strings.NewReader(tt.input), Out: &bytes.Buffer{}}
			got, err := p.ChooseOrEnter("Select a bridge", tt.options, "Enter IP manually", "Bridge IP")
			if err != nil {
				t.Fatalf("ChooseOrEnter failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestWaitNonInteractive(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{Out: &out}

	got, err := Wait(context.Background(), p, "Pairing with 10.0.0.2...", "Press the link button", func(ctx context.Context) (string, error) {
		return "user", nil
	})
	if err != nil || got != "user" {
		t.Errorf("Expected user, got %q (%v)", got, err)
	}
	if !strings.Contains(out.String(), "Press the link button") {
		t.Errorf("Expected hint in output, got %q", out.String())
	}
}

package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Prompter asks the user questions during setup. Interactive prompts are
// used on a terminal, numbered line prompts otherwise (pipes, scripts, tests).
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool

	reader *bufio.Reader
}

// NewPrompter creates a prompter on stdin/stderr, interactive when both are
// terminals
func NewPrompter() *Prompter {
	return &Prompter{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: IsTerminal(os.Stdin) && IsTerminal(os.Stderr),
	}
}

func (p *Prompter) lines() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.lines().ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
		// Last line without newline
	case errors.Is(err, io.EOF):
		return "", ErrAborted
	default:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Choose asks for one of options and returns its index
func (p *Prompter) Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("nothing to choose from")
	}
	if p.Interactive {
		choice, err := Choose(title, options, "", "")
		return choice.Index, err
	}

	fmt.Fprintln(p.Out, title)
	for i, option := range options {
		fmt.Fprintf(p.Out, "  %d) %s\n", i+1, option)
	}
	for {
		fmt.Fprintf(p.Out, "Select [1-%d]: ", len(options))
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(p.Out, "Invalid selection, try again.")
	}
}

// ChooseOrEnter is like Choose with an extra option to type a value. It
// returns either the index of an option or the typed value with index -1.
func (p *Prompter) ChooseOrEnter(title string, options []string, manualLabel, manualPrompt string) (Choice, error) {
	if p.Interactive {
		return Choose(title, options, manualLabel, manualPrompt)
	}

	if len(options) > 0 {
		idx, err := p.Choose(title, append(append([]string(nil), options...), manualLabel))
		if err != nil {
			return Choice{}, err
		}
		if idx < len(options) {
			return Choice{Index: idx}, nil
		}
	}

	for {
		fmt.Fprintf(p.Out, "%s: ", manualPrompt)
		line, err := p.readLine()
		if err != nil {
			return Choice{}, err
		}
		if line != "" {
			return Choice{Index: -1, Manual: line}, nil
		}
	}
}

// Confirm waits for the user to press enter
func (p *Prompter) Confirm(message string) error {
	fmt.Fprintf(p.Out, "%s ", message)
	_, err := p.readLine()
	return err
}

// Wait runs task behind a spinner on a terminal, or prints label and runs
// it directly otherwise
func Wait[T any](ctx context.Context, p *Prompter, label, hint string, task func(ctx context.Context) (T, error)) (T, error) {
	if p.Interactive {
		return Spin(ctx, label, hint, task)
	}
	fmt.Fprintln(p.Out, label)
	if hint != "" {
		fmt.Fprintln(p.Out, hint)
	}
	return task(ctx)
}

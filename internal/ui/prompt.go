package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/backlight/internal/errors"
	"golang.org/x/term"
)

// Option is one entry of a Select prompt.
type Option struct {
	Label string
	Value string
}

// Prompter asks the user questions through Huh forms.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// Accessible switches Huh to line-based prompts.
	Accessible bool
}

// NewPrompter returns a Prompter on stdin/stdout. Accessible mode is used
// when stdin is not a terminal.
func NewPrompter() *Prompter {
	return &Prompter{
		In:         os.Stdin,
		Out:        os.Stdout,
		Accessible: !isTerminal(os.Stdin),
	}
}

func (p *Prompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithAccessible(p.Accessible)
	if p.In != nil {
		form = form.WithInput(p.In)
	}
	if p.Out != nil {
		form = form.WithOutput(p.Out)
	}
	return formError(form.Run())
}

// formError maps an aborted form to errors.ErrCancelled.
func formError(err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, huh.ErrUserAborted) {
		return errors.ErrCancelled
	}
	return errors.WrapWithCode(err, errors.ErrSetup,
		"Failed to get user input",
		"Run setup from an interactive terminal")
}

// isTerminal reports whether r is a terminal device.
func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Select asks the user to pick one of options and returns its Value.
func (p *Prompter) Select(title string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("select %q: no options", title)
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.Label, o.Value)
	}

	value := options[0].Value
	err := p.run(huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&value))
	return value, err
}

// Input asks for a line of text. validate may be nil.
func (p *Prompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		field = field.Validate(validate)
	}
	err := p.run(field)
	return strings.TrimSpace(value), err
}

// Confirm asks a yes/no question. Declining is not an error.
func (p *Prompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := p.run(huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok))
	return ok, err
}

// Password asks for a secret without echoing it. Piped input has no
// terminal to hide the echo on, so it is read as a plain line.
func (p *Prompter) Password(title string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Value(&value)
	if !p.Accessible || isTerminal(p.In) {
		field = field.EchoMode(huh.EchoModePassword)
	}
	err := p.run(field)
	return strings.TrimRight(value, "\r\n"), err
}

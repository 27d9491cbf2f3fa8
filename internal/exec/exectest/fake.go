// Package exectest provides a scripted exec.Runner for tests.
package exectest

import (
	"context"
	"sync"

	"github.com/rileyhilliard/backlight/internal/exec"
)

// Func answers one command.
type Func func(cmd exec.Command) (exec.Result, error)

// Fake records every command and answers with Respond, or an empty
// successful result when Respond is nil.
type Fake struct {
	Respond Func

	mu       sync.Mutex
	commands []exec.Command
}

// New returns a Fake that answers with fn.
func New(fn Func) *Fake {
	return &Fake{Respond: fn}
}

// Run implements exec.Runner.
func (f *Fake) Run(ctx context.Context, cmd exec.Command) (exec.Result, error) {
	f.mu.Lock()
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	if f.Respond == nil {
		return exec.Result{}, nil
	}
	return f.Respond(cmd)
}

// Commands returns the commands run so far.
func (f *Fake) Commands() []exec.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]exec.Command, len(f.commands))
	copy(out, f.commands)
	return out
}

// Names returns the program name of each command run so far.
func (f *Fake) Names() []string {
	var names []string
	for _, c := range f.Commands() {
		names = append(names, c.Name)
	}
	return names
}

// Stdout is a shorthand Func that always succeeds with out.
func Stdout(out string) Func {
	return func(exec.Command) (exec.Result, error) {
		return exec.Result{Stdout: []byte(out)}, nil
	}
}

// Package exec runs local programs (ssh, ssh-keygen) with captured output.
// Everything that shells out goes through the Runner interface so tests
// can substitute a fake.
package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/backlight/internal/errors"
)

// Command is one program invocation. Args are passed as-is, never through a shell.
type Command struct {
	Name string
	Args []string
	// Env entries are appended to the current environment.
	Env []string
}

// String renders the command for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the captured outcome of a command that ran.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes commands.
type Runner interface {
	// Run returns the result of a command that started, whatever its exit
	// code. An error means the program could not be run at all.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// LocalRunner runs commands on this machine with os/exec.
type LocalRunner struct{}

// NewLocalRunner returns a Runner backed by os/exec.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run implements Runner. Stdin is not connected, so nothing can prompt.
func (LocalRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	command := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		command.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	runErr := command.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) && ctx.Err() == nil {
			return Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitErr.ExitCode()}, nil
		}
		if ctx.Err() != nil {
			return Result{ExitCode: -1}, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
				"'"+cmd.Name+"' was cancelled",
				"")
		}
		return Result{ExitCode: -1}, errors.WrapWithCode(runErr, errors.ErrExec,
			"Couldn't run '"+cmd.Name+"'",
			"Make sure "+cmd.Name+" is installed and on PATH.")
	}

	return Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// Combined returns stdout followed by stderr, trimmed.
func (r Result) Combined() string {
	return strings.TrimSpace(string(r.Stdout) + string(r.Stderr))
}

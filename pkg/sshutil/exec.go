package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/backlight/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns the output.
// Returns stdout, stderr, exit code, and any error.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	return c.ExecContext(context.Background(), cmd)
}

// ExecContext is Exec with cancellation: when ctx ends, the session is
// closed and the command's result is abandoned.
func (c *Client) ExecContext(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try again.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		session.Close()
		return nil, nil, -1, errors.WrapWithCode(ctx.Err(), errors.ErrSSH,
			"SSH command cancelled",
			"")
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Failed to execute command: %s", cmd),
			"Check if the command exists on the TV.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}

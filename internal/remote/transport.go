package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
	"github.com/rileyhilliard/backlight/pkg/sshutil"
)

// sshConnectionFailed is the exit status ssh uses for its own errors, as
// opposed to the remote command's.
const sshConnectionFailed = 255

// Runner runs a shell line on the TV and returns its stdout.
// Connection failures come back as ErrSSH errors; a remote command that
// ran but failed comes back as ErrRemote together with whatever it printed.
type Runner interface {
	Run(ctx context.Context, s config.Settings, remoteCmd string) (string, error)
}

// OpenSSH runs commands through the system ssh binary.
type OpenSSH struct {
	Exec   exec.Runner
	Binary string // defaults to "ssh"
}

// NewOpenSSH returns an OpenSSH runner using the local ssh binary.
func NewOpenSSH(r exec.Runner) *OpenSSH {
	return &OpenSSH{Exec: r, Binary: "ssh"}
}

// Run implements Runner.
func (o *OpenSSH) Run(ctx context.Context, s config.Settings, remoteCmd string) (string, error) {
	binary := o.Binary
	if binary == "" {
		binary = "ssh"
	}

	res, err := o.Exec.Run(ctx, exec.Command{Name: binary, Args: SSHArgs(s, remoteCmd)})
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't start ssh",
			"Make sure the OpenSSH client is installed, or set transport: native")
	}

	stdout := string(res.Stdout)
	switch {
	case res.ExitCode == 0:
		return stdout, nil
	case res.ExitCode == sshConnectionFailed:
		return stdout, errors.WrapWithCode(fmt.Errorf("%s", strings.TrimSpace(string(res.Stderr))), errors.ErrSSH,
			fmt.Sprintf("Can't connect to the TV at %s", s.TVIP),
			"Make sure the TV is on and the key is installed (backlight setup)")
	default:
		return stdout, errors.New(errors.ErrRemote,
			fmt.Sprintf("Remote command exited with status %d", res.ExitCode),
			strings.TrimSpace(res.Combined()))
	}
}

// Native runs commands with the in-process SSH client from pkg/sshutil.
type Native struct {
	// ConfigPath is the ssh_config consulted for Port overrides.
	ConfigPath string
}

// Run implements Runner. Each call opens and closes its own connection.
func (n *Native) Run(ctx context.Context, s config.Settings, remoteCmd string) (string, error) {
	client, err := sshutil.Dial(sshutil.Target{
		Host:       s.TVIP,
		User:       s.SSHUser,
		KeyPath:    s.SSHKeyPath,
		Timeout:    s.Timeout(),
		ConfigPath: n.ConfigPath,
	})
	if err != nil {
		return "", err
	}
	defer client.Close()

	stdout, stderr, code, err := client.ExecContext(ctx, remoteCmd)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return string(stdout), errors.New(errors.ErrRemote,
			fmt.Sprintf("Remote command exited with status %d", code),
			strings.TrimSpace(string(stdout)+string(stderr)))
	}
	return string(stdout), nil
}

// RunnerFor picks the Runner matching s.Transport.
func RunnerFor(s config.Settings, r exec.Runner) Runner {
	if s.Transport == config.TransportNative {
		return &Native{}
	}
	return NewOpenSSH(r)
}

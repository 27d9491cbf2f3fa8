package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
)

// ConnectionMarker is echoed by the TV to prove a login worked.
const ConnectionMarker = "backlight-ok"

// baseOptions are passed to every setup ssh invocation.
func baseOptions(s config.Settings) []string {
	return []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "LogLevel=ERROR",
		"-o", "ConnectTimeout=" + s.TimeoutArg(),
	}
}

// TestConnection reports whether the TV accepts the configured key without
// a password. A TV that answered but refused the key yields (false, nil);
// a TV that couldn't be reached yields an error.
func (p *Provisioner) TestConnection(ctx context.Context, s config.Settings) (bool, error) {
	args := append(baseOptions(s),
		"-o", "BatchMode=yes",
		"-i", config.ExpandHome(s.SSHKeyPath),
		s.Target(),
		"echo "+ConnectionMarker,
	)

	res, err := p.Exec.Run(ctx, exec.Command{Name: p.sshBinary(), Args: args})
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't run ssh",
			"Install the OpenSSH client")
	}

	out := res.Combined()
	if res.ExitCode == 0 && strings.Contains(string(res.Stdout), ConnectionMarker) {
		p.log().Debug("passwordless login to %s works", s.Target())
		return true, nil
	}

	if isAuthFailure(out) {
		p.log().Debug("key rejected by %s", s.Target())
		return false, nil
	}
	if res.ExitCode == 0 {
		return false, nil
	}

	return false, errors.New(errors.ErrSSH,
		fmt.Sprintf("SSH connection to %s failed", s.TVIP),
		suggestionFor(out, s.TVIP))
}

func isAuthFailure(out string) bool {
	return strings.Contains(out, "Permission denied") ||
		strings.Contains(out, "Too many authentication failures")
}

func suggestionFor(out, ip string) string {
	switch {
	case strings.Contains(out, "Connection refused"):
		return "Is SSH enabled on the TV? Check the Homebrew Channel root settings."
	case strings.Contains(out, "Could not resolve hostname"):
		return "Check the TV address and your network connection."
	case strings.Contains(out, "timed out"), strings.Contains(out, "No route to host"):
		return "The TV might be off or on another network. Try: ping " + ip
	}
	if out == "" {
		return "Make sure the TV is reachable: ping " + ip
	}
	return out
}

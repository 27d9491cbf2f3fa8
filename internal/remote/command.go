// Package remote drives the PicCap backlight service on the TV over SSH.
package remote

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/util"
)

// ServiceURI is the luna bus address of the PicCap service.
const ServiceURI = "luna://org.webosbrew.piccap.service/"

// Action is a PicCap service method.
type Action string

const (
	ActionStart  Action = "start"
	ActionStop   Action = "stop"
	ActionStatus Action = "status"
)

// ParseAction validates s as a service method.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionStart, ActionStop, ActionStatus:
		return a, nil
	default:
		return "", errors.New(errors.ErrRemote,
			fmt.Sprintf("Unknown PicCap action %q", s),
			"Supported actions: start, stop, status")
	}
}

// RemoteCommand is the shell line run on the TV for action.
func RemoteCommand(action Action) string {
	return "luna-send -n 1 " + util.ShellJoin(ServiceURI+string(action), "{}")
}

// SSHArgs builds the ssh argument list for running remoteCmd on the TV.
// Host key checking is off: the TV's key changes on every firmware reset.
func SSHArgs(s config.Settings, remoteCmd string) []string {
	return []string{
		"-tt",
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "LogLevel=ERROR",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=" + s.TimeoutArg(),
		"-i", s.SSHKeyPath,
		s.Target(),
		remoteCmd,
	}
}

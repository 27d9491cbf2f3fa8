package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/discovery"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/logger"
	"github.com/rileyhilliard/backlight/internal/remote"
	"github.com/rileyhilliard/backlight/internal/ui"
	"github.com/rileyhilliard/backlight/internal/wizard"
)

// Action is one dispatchable operation.
type Action string

const (
	ActionToggle   Action = "toggle"
	ActionStart    Action = "start"
	ActionStop     Action = "stop"
	ActionSetup    Action = "setup"
	ActionSettings Action = "settings"
	ActionStatus   Action = "status"
	ActionDiscover Action = "discover"
)

// Actions lists every named action, for help and completion.
var Actions = []Action{ActionToggle, ActionStart, ActionStop, ActionStatus, ActionSetup, ActionSettings, ActionDiscover}

// ParseAction maps an argument to an Action. Empty and unrecognized words
// mean toggle.
func ParseAction(token string) Action {
	switch a := Action(strings.ToLower(strings.TrimSpace(token))); a {
	case ActionStart, ActionStop, ActionSetup, ActionSettings, ActionStatus, ActionDiscover:
		return a
	}
	return ActionToggle
}

// NeedsTV reports whether a runs a command on the TV, which requires
// valid settings. setup, settings and discover are how bad settings get
// fixed, so they run regardless.
func (a Action) NeedsTV() bool {
	switch a {
	case ActionToggle, ActionStart, ActionStop, ActionStatus:
		return true
	}
	return false
}

// NotConfiguredMessage is shown when an operation needs a TV and none is set.
const NotConfiguredMessage = "Please configure TV IP in settings"

// Remote drives the backlight service on the TV.
type Remote interface {
	Status(ctx context.Context, s config.Settings) (remote.State, error)
	Start(ctx context.Context, s config.Settings) error
	Stop(ctx context.Context, s config.Settings) error
}

// SetupRunner runs the setup wizard.
type SetupRunner interface {
	Run(ctx context.Context, s config.Settings) wizard.Outcome
}

// SettingsOpener shows the settings to the user.
type SettingsOpener interface {
	Open(ctx context.Context, path string, s config.Settings) error
}

// Notifier shows one-line messages.
type Notifier interface {
	Notify(level ui.Level, message string)
}

// Dispatcher routes an Action to its implementation.
type Dispatcher struct {
	Remote     Remote
	Setup      SetupRunner
	Notifier   Notifier
	Settings   SettingsOpener
	Discoverer wizard.Discoverer
	Progress   wizard.Progress
	// Out receives plain output of status and discover.
	Out io.Writer
	// ConfigPath is the file settings were loaded from.
	ConfigPath string
	Log        logger.Logger
}

// reportedError marks an error the user has already been shown.
type reportedError struct{ err error }

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// Dispatch runs action against the TV in s.
func (d *Dispatcher) Dispatch(ctx context.Context, action Action, s config.Settings) error {
	if d.Log == nil {
		d.Log = logger.Noop()
	}
	d.Log.Debug("dispatch %s (tv_ip=%q)", action, s.TVIP)

	switch action {
	case ActionSetup:
		return d.setup(ctx, s)
	case ActionSettings:
		return d.Settings.Open(ctx, d.ConfigPath, s)
	case ActionDiscover:
		return d.discover(ctx)
	case ActionStatus:
		return d.status(ctx, s)
	}

	if !s.Configured() {
		d.Notifier.Notify(ui.LevelWarning, NotConfiguredMessage)
		return d.setup(ctx, s)
	}

	switch action {
	case ActionStart:
		return d.start(ctx, s)
	case ActionStop:
		return d.stop(ctx, s)
	default:
		return d.toggle(ctx, s)
	}
}

func (d *Dispatcher) toggle(ctx context.Context, s config.Settings) error {
	state, err := d.Remote.Status(ctx, s)
	d.Log.Debug("toggle: service is %s", state)

	switch state {
	case remote.StateRunning:
		return d.stop(ctx, s)
	case remote.StateStopped:
		return d.start(ctx, s)
	case remote.StateUnreachable:
		if err == nil {
			err = errors.New(errors.ErrSSH, fmt.Sprintf("Can't reach the TV at %s", s.TVIP), "")
		}
		return err
	default:
		if err == nil {
			err = errors.New(errors.ErrRemote, "Couldn't tell whether the backlight is on", "")
		}
		return err
	}
}

func (d *Dispatcher) start(ctx context.Context, s config.Settings) error {
	if err := d.Remote.Start(ctx, s); err != nil {
		return err
	}
	d.Notifier.Notify(ui.LevelInfo, "On")
	return nil
}

func (d *Dispatcher) stop(ctx context.Context, s config.Settings) error {
	if err := d.Remote.Stop(ctx, s); err != nil {
		return err
	}
	d.Notifier.Notify(ui.LevelInfo, "Off")
	return nil
}

func (d *Dispatcher) status(ctx context.Context, s config.Settings) error {
	if !s.Configured() {
		d.Notifier.Notify(ui.LevelWarning, NotConfiguredMessage)
		return errors.New(errors.ErrConfig, "No TV configured", "Run 'backlight setup' first")
	}

	state, err := d.Remote.Status(ctx, s)
	if d.Out != nil {
		fmt.Fprintf(d.Out, "%s: %s\n", s.TVIP, state)
	}
	if state == remote.StateRunning || state == remote.StateStopped {
		return nil
	}
	return err
}

func (d *Dispatcher) setup(ctx context.Context, s config.Settings) error {
	out := d.Setup.Run(ctx, s)
	if out.Completed || out.Cancelled {
		return nil
	}

	if out.Guidance != "" && d.Out != nil {
		fmt.Fprintln(d.Out)
		fmt.Fprintln(d.Out, strings.TrimRight(out.Guidance, "\n"))
	}

	err := out.Err
	if err == nil {
		err = errors.New(errors.ErrSetup, out.Reason, "")
	}
	return reportedError{err: err}
}

func (d *Dispatcher) discover(ctx context.Context) error {
	var results discovery.Results
	run := func() error {
		var err error
		results, err = d.Discoverer.Discover(ctx)
		return err
	}

	var err error
	if d.Progress != nil {
		err = d.Progress.Run("Searching for LG TVs", run)
	} else {
		err = run()
	}
	if err != nil {
		return err
	}

	if d.Out == nil {
		return nil
	}
	if len(results) == 0 {
		fmt.Fprintln(d.Out, "No LG TVs found")
		return nil
	}
	for _, tv := range results.Sorted() {
		fmt.Fprintf(d.Out, "%-15s  %s\n", tv.IP, tv.FriendlyName)
	}
	return nil
}

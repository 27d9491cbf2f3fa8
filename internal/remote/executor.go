package remote

import (
	"context"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/logger"
)

// Executor issues PicCap actions against the TV named in the settings.
type Executor struct {
	Runner Runner
	Log    logger.Logger
}

// NewExecutor returns an Executor using runner.
func NewExecutor(runner Runner, log logger.Logger) *Executor {
	if log == nil {
		log = logger.Noop()
	}
	return &Executor{Runner: runner, Log: log}
}

// Invoke runs one service action and returns its raw output.
func (e *Executor) Invoke(ctx context.Context, s config.Settings, action Action) (string, error) {
	if _, err := ParseAction(string(action)); err != nil {
		return "", err
	}
	if !s.Configured() {
		return "", errors.New(errors.ErrConfig,
			"No TV configured",
			"Run 'backlight setup' first")
	}

	cmd := RemoteCommand(action)
	e.Log.Debug("running on %s: %s", s.Target(), cmd)

	out, err := e.Runner.Run(ctx, s, cmd)
	if err != nil {
		e.Log.Warn("%s on %s failed: %s", action, s.TVIP, errors.Summary(err))
	}
	return out, err
}

// Status asks the service whether it is running. A TV that can't be
// reached reports StateUnreachable rather than StateStopped.
func (e *Executor) Status(ctx context.Context, s config.Settings) (State, error) {
	out, err := e.Invoke(ctx, s, ActionStatus)
	if err != nil && !errors.IsCode(err, errors.ErrRemote) {
		if errors.IsCode(err, errors.ErrSSH) {
			return StateUnreachable, err
		}
		return StateUnknown, err
	}

	if strings.TrimSpace(out) == "" {
		if err != nil {
			return StateUnknown, err
		}
		return StateUnreachable, errors.New(errors.ErrRemote,
			"The TV sent no reply",
			"Check that PicCap is installed and luna-send works over SSH")
	}

	reply, ok := ParseReply(out)
	if !ok {
		if err != nil {
			return StateUnknown, err
		}
		return stateFromText(out), nil
	}

	if !reply.OK() {
		return StateUnknown, replyError(ActionStatus, reply)
	}

	e.Log.Debug("status reply: running=%t", reply.IsRunning)
	if reply.IsRunning {
		return StateRunning, nil
	}
	return StateStopped, nil
}

// Start starts the backlight service.
func (e *Executor) Start(ctx context.Context, s config.Settings) error {
	return e.do(ctx, s, ActionStart)
}

// Stop stops the backlight service.
func (e *Executor) Stop(ctx context.Context, s config.Settings) error {
	return e.do(ctx, s, ActionStop)
}

func (e *Executor) do(ctx context.Context, s config.Settings, action Action) error {
	out, err := e.Invoke(ctx, s, action)
	if reply, ok := ParseReply(out); ok && !reply.OK() {
		return replyError(action, reply)
	}
	return err
}

func replyError(action Action, r Reply) error {
	msg := "PicCap rejected " + string(action)
	if r.ErrorText != "" {
		msg += ": " + r.ErrorText
	}
	return errors.New(errors.ErrRemote, msg,
		"Open PicCap on the TV once and check that its service is installed")
}

package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/discovery"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/remote"
	"github.com/rileyhilliard/backlight/internal/ui"
	"github.com/rileyhilliard/backlight/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	state    remote.State
	stateErr error
	startErr error
	stopErr  error
	calls    []string
}

func (f *fakeRemote) Status(ctx context.Context, s config.Settings) (remote.State, error) {
	f.calls = append(f.calls, "status")
	return f.state, f.stateErr
}

func (f *fakeRemote) Start(ctx context.Context, s config.Settings) error {
	f.calls = append(f.calls, "start")
	return f.startErr
}

func (f *fakeRemote) Stop(ctx context.Context, s config.Settings) error {
	f.calls = append(f.calls, "stop")
	return f.stopErr
}

type fakeSetup struct {
	outcome wizard.Outcome
	runs    int
}

func (f *fakeSetup) Run(ctx context.Context, s config.Settings) wizard.Outcome {
	f.runs++
	return f.outcome
}

type note struct {
	level   ui.Level
	message string
}

type fakeNotifier struct{ notes []note }

func (f *fakeNotifier) Notify(level ui.Level, message string) {
	f.notes = append(f.notes, note{level, message})
}

type fakeOpener struct {
	path  string
	opens int
}

func (f *fakeOpener) Open(ctx context.Context, path string, s config.Settings) error {
	f.opens++
	f.path = path
	return nil
}

type fakeDiscoverer struct {
	results discovery.Results
	err     error
}

func (f fakeDiscoverer) Discover(ctx context.Context) (discovery.Results, error) {
	return f.results, f.err
}

type dispatchHarness struct {
	remote   *fakeRemote
	setup    *fakeSetup
	notifier *fakeNotifier
	opener   *fakeOpener
	out      *bytes.Buffer
	d        *Dispatcher
}

func newDispatchHarness() *dispatchHarness {
	h := &dispatchHarness{
		remote:   &fakeRemote{},
		setup:    &fakeSetup{outcome: wizard.Outcome{Completed: true}},
		notifier: &fakeNotifier{},
		opener:   &fakeOpener{},
		out:      &bytes.Buffer{},
	}
	h.d = &Dispatcher{
		Remote:     h.remote,
		Setup:      h.setup,
		Notifier:   h.notifier,
		Settings:   h.opener,
		Discoverer: fakeDiscoverer{},
		Out:        h.out,
		ConfigPath: "/home/me/.config/backlight/config.yaml",
	}
	return h
}

func configured() config.Settings {
	return config.Settings{TVIP: "192.168.1.20", SSHUser: "root", SSHKeyPath: "/tmp/id", SSHTimeout: 5, Transport: config.TransportOpenSSH}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		token string
		want  Action
	}{
		{"", ActionToggle},
		{"toggle", ActionToggle},
		{"start", ActionStart},
		{"STOP", ActionStop},
		{" setup ", ActionSetup},
		{"settings", ActionSettings},
		{"status", ActionStatus},
		{"discover", ActionDiscover},
		{"frobnicate", ActionToggle},
		{"on", ActionToggle},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAction(tt.token))
		})
	}
}

func TestDispatch_UnconfiguredRunsSetup(t *testing.T) {
	for _, action := range []Action{ActionToggle, ActionStart, ActionStop} {
		t.Run(string(action), func(t *testing.T) {
			h := newDispatchHarness()

			err := h.d.Dispatch(context.Background(), action, config.Settings{})

			require.NoError(t, err)
			assert.Equal(t, 1, h.setup.runs)
			assert.Empty(t, h.remote.calls, "nothing is sent before a TV is set")
			require.NotEmpty(t, h.notifier.notes)
			assert.Equal(t, note{ui.LevelWarning, NotConfiguredMessage}, h.notifier.notes[0])
		})
	}
}

func TestDispatch_ToggleRunningStops(t *testing.T) {
	h := newDispatchHarness()
	h.remote.state = remote.StateRunning

	require.NoError(t, h.d.Dispatch(context.Background(), ActionToggle, configured()))

	assert.Equal(t, []string{"status", "stop"}, h.remote.calls)
	assert.Equal(t, []note{{ui.LevelInfo, "Off"}}, h.notifier.notes)
}

func TestDispatch_ToggleStoppedStarts(t *testing.T) {
	h := newDispatchHarness()
	h.remote.state = remote.StateStopped

	require.NoError(t, h.d.Dispatch(context.Background(), ActionToggle, configured()))

	assert.Equal(t, []string{"status", "start"}, h.remote.calls)
	assert.Equal(t, []note{{ui.LevelInfo, "On"}}, h.notifier.notes)
}

func TestDispatch_ToggleUndecidedIssuesNothing(t *testing.T) {
	tests := []struct {
		name     string
		state    remote.State
		stateErr error
		code     string
	}{
		{"unreachable with error", remote.StateUnreachable, errors.New(errors.ErrSSH, "Can't reach the TV", ""), errors.ErrSSH},
		{"unreachable without error", remote.StateUnreachable, nil, errors.ErrSSH},
		{"unknown", remote.StateUnknown, nil, errors.ErrRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newDispatchHarness()
			h.remote.state = tt.state
			h.remote.stateErr = tt.stateErr

			err := h.d.Dispatch(context.Background(), ActionToggle, configured())

			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code))
			assert.Equal(t, []string{"status"}, h.remote.calls)
			assert.Empty(t, h.notifier.notes)
		})
	}
}

func TestDispatch_StartStop(t *testing.T) {
	h := newDispatchHarness()

	require.NoError(t, h.d.Dispatch(context.Background(), ActionStart, configured()))
	require.NoError(t, h.d.Dispatch(context.Background(), ActionStop, configured()))

	assert.Equal(t, []string{"start", "stop"}, h.remote.calls)
	assert.Equal(t, []note{{ui.LevelInfo, "On"}, {ui.LevelInfo, "Off"}}, h.notifier.notes)
}

func TestDispatch_StartFailureNotNotified(t *testing.T) {
	h := newDispatchHarness()
	h.remote.startErr = errors.New(errors.ErrRemote, "PicCap service rejected the request", "")

	err := h.d.Dispatch(context.Background(), ActionStart, configured())

	assert.True(t, errors.IsCode(err, errors.ErrRemote))
	assert.Empty(t, h.notifier.notes)
}

func TestDispatch_Settings(t *testing.T) {
	h := newDispatchHarness()

	require.NoError(t, h.d.Dispatch(context.Background(), ActionSettings, config.Settings{}))

	assert.Equal(t, 1, h.opener.opens)
	assert.Equal(t, h.d.ConfigPath, h.opener.path)
	assert.Zero(t, h.setup.runs, "settings never starts the wizard")
}

func TestDispatch_Status(t *testing.T) {
	h := newDispatchHarness()
	h.remote.state = remote.StateRunning

	require.NoError(t, h.d.Dispatch(context.Background(), ActionStatus, configured()))

	assert.Equal(t, "192.168.1.20: running\n", h.out.String())
	assert.Equal(t, []string{"status"}, h.remote.calls)
}

func TestDispatch_StatusUnreachable(t *testing.T) {
	h := newDispatchHarness()
	h.remote.state = remote.StateUnreachable
	h.remote.stateErr = errors.New(errors.ErrSSH, "Can't reach the TV", "")

	err := h.d.Dispatch(context.Background(), ActionStatus, configured())

	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.Contains(t, h.out.String(), "192.168.1.20: ")
}

func TestDispatch_StatusUnconfigured(t *testing.T) {
	h := newDispatchHarness()

	err := h.d.Dispatch(context.Background(), ActionStatus, config.Settings{})

	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Zero(t, h.setup.runs)
	assert.Empty(t, h.remote.calls)
}

func TestDispatch_SetupOutcomes(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		h := newDispatchHarness()
		assert.NoError(t, h.d.Dispatch(context.Background(), ActionSetup, configured()))
		assert.Equal(t, 1, h.setup.runs)
	})

	t.Run("cancelled", func(t *testing.T) {
		h := newDispatchHarness()
		h.setup.outcome = wizard.Outcome{Cancelled: true}
		assert.NoError(t, h.d.Dispatch(context.Background(), ActionSetup, configured()))
		assert.Empty(t, h.out.String())
	})

	t.Run("aborted with guidance", func(t *testing.T) {
		h := newDispatchHarness()
		h.setup.outcome = wizard.Outcome{
			Reason:   "Couldn't copy the key",
			Guidance: "ssh root@192.168.1.20 ...\n",
		}

		err := h.d.Dispatch(context.Background(), ActionSetup, configured())

		require.Error(t, err)
		assert.True(t, IsReported(err))
		assert.True(t, errors.IsCode(err, errors.ErrSetup))
		assert.Contains(t, h.out.String(), "ssh root@192.168.1.20 ...")
	})

	t.Run("aborted with cause", func(t *testing.T) {
		h := newDispatchHarness()
		cause := errors.New(errors.ErrSSH, "ssh failed", "")
		h.setup.outcome = wizard.Outcome{Reason: "x", Err: cause}

		err := h.d.Dispatch(context.Background(), ActionSetup, configured())

		assert.True(t, IsReported(err))
		assert.True(t, stderrors.Is(err, cause))
	})
}

func TestDispatch_Discover(t *testing.T) {
	h := newDispatchHarness()
	h.d.Discoverer = fakeDiscoverer{results: discovery.Results{
		"192.168.1.30": "Bedroom TV",
		"192.168.1.4":  "Living Room",
	}}

	require.NoError(t, h.d.Dispatch(context.Background(), ActionDiscover, config.Settings{}))

	assert.Equal(t,
		"192.168.1.4      Living Room\n"+
			"192.168.1.30     Bedroom TV\n",
		h.out.String())
	assert.Zero(t, h.setup.runs)
}

func TestDispatch_DiscoverNothing(t *testing.T) {
	h := newDispatchHarness()

	require.NoError(t, h.d.Dispatch(context.Background(), ActionDiscover, config.Settings{}))
	assert.Equal(t, "No LG TVs found\n", h.out.String())
}

func TestDispatch_DiscoverError(t *testing.T) {
	h := newDispatchHarness()
	h.d.Discoverer = fakeDiscoverer{err: errors.New(errors.ErrDiscovery, "Can't open a UDP socket", "")}

	err := h.d.Dispatch(context.Background(), ActionDiscover, config.Settings{})
	assert.True(t, errors.IsCode(err, errors.ErrDiscovery))
}

func TestIsReported(t *testing.T) {
	base := stderrors.New("boom")
	assert.False(t, IsReported(base))
	assert.False(t, IsReported(nil))
	assert.True(t, IsReported(reportedError{err: base}))
	assert.Equal(t, "boom", reportedError{err: base}.Error())
}

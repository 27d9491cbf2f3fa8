package wizard

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/discovery"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/keymap"
	"github.com/rileyhilliard/backlight/internal/logger"
	"github.com/rileyhilliard/backlight/internal/setup"
	"github.com/rileyhilliard/backlight/internal/ui"
)

// manualEntry is the Select value of the "Enter IP manually" option.
const manualEntry = ""

// Discoverer finds TVs on the network.
type Discoverer interface {
	Discover(ctx context.Context) (discovery.Results, error)
}

// Provisioner manages the local key and its installation on the TV.
type Provisioner interface {
	EnsureKey(ctx context.Context, path string) (bool, error)
	TestConnection(ctx context.Context, s config.Settings) (bool, error)
	CopyKey(ctx context.Context, s config.Settings, password string) error
}

// Prompter asks the user questions. Backing out returns errors.ErrCancelled.
type Prompter interface {
	Select(title string, options []ui.Option) (string, error)
	Input(title, placeholder string, validate func(string) error) (string, error)
	Confirm(title, description string) (bool, error)
	Password(title string) (string, error)
}

// Notifier shows one-line messages.
type Notifier interface {
	Notify(level ui.Level, message string)
}

// SettingsStore persists the chosen TV.
type SettingsStore interface {
	SaveTVIP(ip string) error
}

// Progress runs blocking work with a visible status.
type Progress interface {
	Run(label string, fn func() error) error
}

// KeymapWriter writes a remote-button mapping into dir.
type KeymapWriter func(dir string, m keymap.Mapping) (string, error)

// Wizard holds the collaborators of a setup run.
type Wizard struct {
	Discoverer  Discoverer
	Provisioner Provisioner
	Prompter    Prompter
	Notifier    Notifier
	Store       SettingsStore
	Progress    Progress
	Keymap      KeymapWriter
	// Executable is the binary the keymap invokes. Empty means os.Executable.
	Executable string
	Log        logger.Logger
}

// session is the state carried between steps of one run.
type session struct {
	settings config.Settings
	tvName   string
	keymap   string
}

// Run drives the flow from discovery to a terminal state.
func (w *Wizard) Run(ctx context.Context, s config.Settings) Outcome {
	w.defaults()

	sess := &session{settings: s}
	var out Outcome
	state := StateDiscover

	for {
		out.Trace = append(out.Trace, state)

		if err := ctx.Err(); err != nil {
			return w.finish(out, sess, abortSilently("Setup cancelled"))
		}

		t := w.step(ctx, state, sess)
		w.Log.Debug("wizard %s -> %s", state, describe(t))

		switch t.kind {
		case kindAdvance:
			state = t.next
		case kindComplete:
			out.Completed = true
			return w.finish(out, sess, t)
		default:
			return w.finish(out, sess, t)
		}
	}
}

func (w *Wizard) defaults() {
	if w.Log == nil {
		w.Log = logger.Noop()
	}
	if w.Progress == nil {
		w.Progress = passthrough{}
	}
	if w.Keymap == nil {
		w.Keymap = keymap.Write
	}
}

func (w *Wizard) step(ctx context.Context, state State, sess *session) Transition {
	switch state {
	case StateDiscover:
		return w.discover(ctx, sess)
	case StateKeyCheck:
		return w.keyCheck(ctx, sess)
	case StateConnectionTest:
		return w.connectionTest(ctx, sess)
	case StateKeyCopy:
		return w.keyCopy(ctx, sess)
	case StateVerify:
		return w.verify(ctx, sess)
	case StateComplete:
		return w.complete(sess)
	}
	return abort(fmt.Sprintf("unknown setup step %q", state), nil)
}

func (w *Wizard) finish(out Outcome, sess *session, t Transition) Outcome {
	out.TVIP = sess.settings.TVIP
	out.TVName = sess.tvName
	out.KeymapPath = sess.keymap

	if out.Completed {
		return out
	}

	out.TVIP = ""
	out.Reason = t.reason
	out.Guidance = t.guidance
	out.Err = t.err
	out.Cancelled = t.silent
	if t.silent {
		w.Log.Info("setup stopped: %s", t.reason)
	} else {
		w.Log.Warn("setup aborted: %s", t.reason)
		w.Notifier.Notify(ui.LevelError, t.reason)
	}
	return out
}

// promptAbort turns a prompt error into the matching abort.
func promptAbort(err error) Transition {
	if errors.IsCancelled(err) {
		return abortSilently("Setup cancelled")
	}
	return abort("Couldn't read your answer: "+errors.Summary(err), err)
}

func (w *Wizard) discover(ctx context.Context, sess *session) Transition {
	var results discovery.Results
	err := w.Progress.Run("Searching for LG TVs", func() error {
		var err error
		results, err = w.Discoverer.Discover(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return abortSilently("Setup cancelled")
		}
		w.Notifier.Notify(ui.LevelWarning, "TV search failed: "+errors.Summary(err))
	}

	var ip string
	if len(results) > 0 {
		tvs := results.Sorted()
		options := make([]ui.Option, 0, len(tvs)+1)
		for _, tv := range tvs {
			options = append(options, ui.Option{Label: fmt.Sprintf("%s (%s)", tv.FriendlyName, tv.IP), Value: tv.IP})
		}
		options = append(options, ui.Option{Label: "Enter IP manually", Value: manualEntry})

		choice, err := w.Prompter.Select("Select your TV", options)
		if err != nil {
			return promptAbort(err)
		}
		ip = choice
		sess.tvName = results[choice]
	}

	if ip == manualEntry {
		entered, err := w.Prompter.Input("TV IP address", "192.168.1.20", validateManualIP)
		if err != nil {
			return promptAbort(err)
		}
		if err := validateManualIP(entered); err != nil {
			return abort(errors.Summary(err), err)
		}
		ip = strings.TrimSpace(entered)
	}

	sess.settings = sess.settings.WithTVIP(ip)
	return advance(StateKeyCheck)
}

func validateManualIP(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New(errors.ErrConfig, "No TV address entered", "Enter the TV's IP address")
	}
	return config.ValidateAddress(s)
}

func (w *Wizard) keyCheck(ctx context.Context, sess *session) Transition {
	path := sess.settings.SSHKeyPath
	if setup.KeyExists(path) {
		return advance(StateConnectionTest)
	}

	ok, err := w.Prompter.Confirm("No SSH key found. Generate one?",
		fmt.Sprintf("A new ed25519 key will be written to %s", path))
	if err != nil {
		return promptAbort(err)
	}
	if !ok {
		return abort("Setup needs an SSH key", nil).
			withGuidance("Create one with: ssh-keygen -t ed25519 -f " + path)
	}

	if _, err := w.Provisioner.EnsureKey(ctx, path); err != nil {
		return abort("Couldn't generate an SSH key: "+errors.Summary(err), err).
			withGuidance("Create one by hand: ssh-keygen -t ed25519 -f " + path)
	}
	w.Notifier.Notify(ui.LevelSuccess, "Generated SSH key "+path)
	return advance(StateConnectionTest)
}

func (w *Wizard) connectionTest(ctx context.Context, sess *session) Transition {
	var ok bool
	err := w.Progress.Run("Testing passwordless login", func() error {
		var err error
		ok, err = w.Provisioner.TestConnection(ctx, sess.settings)
		return err
	})
	if ok {
		return advance(StateComplete)
	}
	if err != nil {
		w.Log.Warn("connection test to %s failed: %s", sess.settings.TVIP, errors.Summary(err))
	}
	return advance(StateKeyCopy)
}

func (w *Wizard) keyCopy(ctx context.Context, sess *session) Transition {
	ok, err := w.Prompter.Confirm("Copy your SSH key to the TV?",
		"The TV's root password is needed once. It is not stored.")
	if err != nil {
		return promptAbort(err)
	}
	if !ok {
		return abortSilently("Key copy declined")
	}

	password, err := w.Prompter.Password(fmt.Sprintf("Password for %s", sess.settings.Target()))
	if err != nil {
		return promptAbort(err)
	}
	if password == "" {
		return abortSilently("No password entered")
	}

	err = w.Progress.Run("Copying SSH key", func() error {
		return w.Provisioner.CopyKey(ctx, sess.settings, password)
	})
	if err != nil {
		return abort("Couldn't copy the SSH key: "+errors.Summary(err), err).
			withGuidance(setup.CopyKeyManual(sess.settings))
	}
	return advance(StateVerify)
}

func (w *Wizard) verify(ctx context.Context, sess *session) Transition {
	var ok bool
	err := w.Progress.Run("Verifying passwordless login", func() error {
		var err error
		ok, err = w.Provisioner.TestConnection(ctx, sess.settings)
		return err
	})
	if ok {
		return advance(StateComplete)
	}
	return abort("Key copied but still not connecting", err).
		withGuidance(setup.CopyKeyManual(sess.settings))
}

// complete is the only place the TV address is written.
func (w *Wizard) complete(sess *session) Transition {
	ip := sess.settings.TVIP
	if err := w.Store.SaveTVIP(ip); err != nil {
		return abort("Couldn't save the TV address: "+errors.Summary(err), err)
	}
	w.Log.Info("saved tv_ip=%s", ip)

	w.offerKeymap(sess)

	name := ip
	if sess.tvName != "" {
		name = fmt.Sprintf("%s (%s)", sess.tvName, ip)
	}
	w.Notifier.Notify(ui.LevelSuccess, "Setup complete: "+name)
	return complete()
}

// offerKeymap binds the configured remote button to toggle. Failures are
// reported but don't undo setup.
func (w *Wizard) offerKeymap(sess *session) {
	s := sess.settings
	if s.KeymapDir == "" || s.Button == "" {
		return
	}

	ok, err := w.Prompter.Confirm(
		fmt.Sprintf("Map the %s remote button to the backlight toggle?", s.Button),
		"Writes "+s.KeymapDir+"/"+keymap.FileName)
	if err != nil || !ok {
		return
	}

	exe := w.Executable
	if exe == "" {
		if path, err := os.Executable(); err == nil {
			exe = path
		} else {
			exe = "backlight"
		}
	}

	path, err := w.Keymap(s.KeymapDir, keymap.Mapping{Button: s.Button, Action: keymap.DefaultAction(exe)})
	if err != nil {
		w.Notifier.Notify(ui.LevelError, "Couldn't write the key mapping: "+errors.Summary(err))
		return
	}
	sess.keymap = path
	w.Notifier.Notify(ui.LevelInfo, fmt.Sprintf("%s button mapped (restart Kodi to apply)", s.Button))
}

func describe(t Transition) string {
	switch t.kind {
	case kindAdvance:
		return string(t.next)
	case kindComplete:
		return "done"
	default:
		return "abort: " + t.reason
	}
}

type passthrough struct{}

func (passthrough) Run(_ string, fn func() error) error { return fn() }

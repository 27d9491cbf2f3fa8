package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/discovery"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
	"github.com/rileyhilliard/backlight/internal/logger"
	"github.com/rileyhilliard/backlight/internal/remote"
	"github.com/rileyhilliard/backlight/internal/setup"
	"github.com/rileyhilliard/backlight/internal/ui"
	"github.com/rileyhilliard/backlight/internal/wizard"
	"github.com/spf13/cobra"
)

// Global flags
var (
	configFlag string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "backlight [toggle|start|stop|status|setup|settings|discover]",
	Short: "Toggle the PicCap backlight on an LG webOS TV",
	Long: `Control the PicCap ambient backlight service on a rooted LG webOS TV over SSH.

With no argument the backlight is toggled: stopped if it is running,
started otherwise. Any unrecognized argument toggles as well, so a remote
button can call backlight with whatever its launcher passes.

The first run (or 'backlight setup') finds the TV on the network and
installs an SSH key on it.

Examples:
  backlight
  backlight start
  backlight setup
  BACKLIGHT_TV_IP=192.168.1.20 backlight status`,
	Args:          cobra.MaximumNArgs(1),
	ValidArgs:     actionNames(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := ""
		if len(args) > 0 {
			token = args[0]
		}
		return run(cmd.Context(), ParseAction(token), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for backlight.

Examples:
  # Bash
  backlight completion bash > /etc/bash_completion.d/backlight

  # Zsh
  backlight completion zsh > "${fpath[1]}/_backlight"

  # Fish
  backlight completion fish > ~/.config/fish/completions/backlight.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.config/backlight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "print debug logs to stderr")
	rootCmd.AddCommand(completionCmd)
}

func actionNames() []string {
	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = string(a)
	}
	return names
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !IsReported(err) {
			fmt.Fprint(os.Stderr, err.Error())
			if !strings.HasSuffix(err.Error(), "\n") {
				fmt.Fprintln(os.Stderr)
			}
		}
		stop()
		os.Exit(1)
	}
}

// run loads settings, wires the real collaborators and dispatches action.
func run(ctx context.Context, action Action, out, errOut io.Writer) error {
	console := ui.NewConsole(out, errOut)

	if debugFlag {
		os.Setenv(logger.DebugEnv, "1")
	}

	store := config.NewFileStore(configFlag)
	s, err := store.Load()
	s, err = checkSettings(action, s, err, console)
	if err != nil {
		return report(console, err)
	}

	log, closeLog := buildLogger(s, errOut)
	defer closeLog()


	d := newDispatcher(s, store, console, out, log)
	if err := d.Dispatch(ctx, action, s); err != nil {
		if IsReported(err) {
			return err
		}
		log.Error("%s failed: %s", action, errors.Summary(err))
		return report(console, err)
	}
	return nil
}

// checkSettings validates loaded settings for actions that reach the TV.
// For the others a load or validation failure is only a warning: a broken
// file falls back to defaults so the user can still run setup or open the
// settings to repair it.
func checkSettings(action Action, s config.Settings, loadErr error, n Notifier) (config.Settings, error) {
	err := loadErr
	if err == nil {
		err = config.Validate(s)
	}
	if err == nil || action.NeedsTV() {
		return s, err
	}

	n.Notify(ui.LevelWarning, errors.Summary(err))
	if loadErr != nil {
		return config.DefaultSettings(), nil
	}
	return s, nil
}

// report shows err as a notification, with details in debug mode.
func report(n Notifier, err error) error {
	n.Notify(ui.LevelError, errors.Summary(err))
	if logger.DebugEnabled() {
		fmt.Fprint(os.Stderr, err.Error())
	}
	return reportedError{err: err}
}

// buildLogger combines the debug stderr logger with the rotating file log.
func buildLogger(s config.Settings, errOut io.Writer) (logger.Logger, func()) {
	var loggers []logger.Logger
	closer := func() {}

	if logger.DebugEnabled() {
		loggers = append(loggers, logger.NewEnvLogger("[backlight]"))
	}
	if s.LogFile != "" {
		fl, err := logger.NewFileLogger(logger.RotationConfig{
			File:  s.LogFile,
			Debug: logger.DebugEnabled(),
		})
		if err != nil {
			fmt.Fprintf(errOut, "backlight: log file disabled: %s\n", errors.Summary(err))
		} else {
			loggers = append(loggers, fl)
			closer = func() { fl.Close() }
		}
	}

	if len(loggers) == 0 {
		return logger.Noop(), closer
	}
	return logger.Multi(loggers...), closer
}

func newDispatcher(s config.Settings, store *config.FileStore, console *ui.Console, out io.Writer, log logger.Logger) *Dispatcher {
	runner := exec.NewLocalRunner()
	spinner := ui.NewSpinner(out)
	disc := discovery.New(log, userAgent())

	w := &wizard.Wizard{
		Discoverer:  disc,
		Provisioner: setup.NewProvisioner(runner, log),
		Prompter:    ui.NewPrompter(),
		Notifier:    console,
		Store:       store,
		Progress:    spinner,
		Log:         log,
	}

	return &Dispatcher{
		Remote:     remote.NewExecutor(remote.RunnerFor(s, runner), log),
		Setup:      w,
		Notifier:   console,
		Settings:   NewEditorOpener(out),
		Discoverer: disc,
		Progress:   spinner,
		Out:        out,
		ConfigPath: store.Path,
		Log:        log,
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/util"
)

// EditorOpener opens the config file in the user's editor, or prints the
// current settings when no editor is set.
type EditorOpener struct {
	Out    io.Writer
	Getenv func(string) string
	// Launch runs an editor command line attached to the terminal.
	Launch func(ctx context.Context, commandLine string) error
}

// NewEditorOpener returns an opener using $VISUAL/$EDITOR and the real terminal.
func NewEditorOpener(out io.Writer) *EditorOpener {
	return &EditorOpener{Out: out, Getenv: os.Getenv, Launch: launchAttached}
}

// Editor returns $VISUAL, then $EDITOR.
func (e *EditorOpener) Editor() string {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Open implements SettingsOpener.
func (e *EditorOpener) Open(ctx context.Context, path string, s config.Settings) error {
	editor := e.Editor()
	if editor == "" || e.Launch == nil {
		return e.print(path, s)
	}

	if err := config.WriteIfMissing(path, s); err != nil {
		return err
	}
	if err := e.Launch(ctx, editor+" "+util.ShellQuote(path)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Editor %q failed", editor),
			"Edit "+path+" by hand")
	}
	return nil
}

func (e *EditorOpener) print(path string, s config.Settings) error {
	if e.Out == nil {
		return nil
	}
	data, err := config.Render(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.Out, "# %s\n", path)
	_, err = e.Out.Write(data)
	return err
}

// launchAttached runs commandLine through sh so editor settings such as
// "code --wait" keep their arguments.
func launchAttached(ctx context.Context, commandLine string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", commandLine)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

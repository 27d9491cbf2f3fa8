package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRootCmd creates a fresh root command so tests don't share flag state.
func newTestRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "backlight",
		Short:     "Toggle the PicCap backlight on an LG webOS TV",
		ValidArgs: actionNames(),
		Args:      cobra.MaximumNArgs(1),
		Run:       func(cmd *cobra.Command, args []string) {},
	}
}

func TestCompletionBashGeneration(t *testing.T) {
	cmd := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, cmd.GenBashCompletion(&buf))
	output := buf.String()

	assert.Contains(t, output, "# bash completion for backlight")
	assert.Contains(t, output, "__backlight_debug")
	assert.Contains(t, output, "complete -o default -F __start_backlight backlight")
}

func TestCompletionBashListsActions(t *testing.T) {
	cmd := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, cmd.GenBashCompletion(&buf))
	output := buf.String()

	for _, name := range []string{"toggle", "start", "stop", "status", "setup", "settings", "discover"} {
		assert.Contains(t, output, `must_have_one_noun+=("`+name+`")`)
	}
}

func TestCompletionZshGeneration(t *testing.T) {
	cmd := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, cmd.GenZshCompletion(&buf))
	output := buf.String()

	assert.Contains(t, output, "#compdef backlight")
	assert.Contains(t, output, "_backlight()")
}

func TestCompletionFishGeneration(t *testing.T) {
	cmd := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, cmd.GenFishCompletion(&buf, true))
	output := buf.String()

	assert.Contains(t, output, "fish completion for backlight")
	assert.Contains(t, output, "complete -c backlight")
}

func TestCompletionPowershellGeneration(t *testing.T) {
	cmd := newTestRootCmd()

	var buf bytes.Buffer
	require.NoError(t, cmd.GenPowerShellCompletion(&buf))
	output := buf.String()

	assert.Contains(t, strings.ToLower(output), "powershell completion")
	assert.Contains(t, output, "Register-ArgumentCompleter")
}

func TestCompletionIncludesBuiltinCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))
	output := buf.String()

	assert.Contains(t, output, "__start_backlight")
	assert.Contains(t, output, "_backlight_root_command")
	assert.Contains(t, output, "_backlight_version()")
	assert.Contains(t, output, "_backlight_completion()")
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}

func TestCompletionCommandWritesScript(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"completion", "zsh"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "#compdef backlight")
}

func TestCompletionCommandRejectsUnknownShell(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"completion", "tcsh"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	assert.Error(t, rootCmd.Execute())
}

func TestRootFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)
}

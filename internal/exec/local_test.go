package exec

import (
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunner_CapturesOutput(t *testing.T) {
	res, err := NewLocalRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
	assert.Equal(t, "out\nerr", res.Combined())
}

func TestLocalRunner_NonZeroExitCode(t *testing.T) {
	res, err := NewLocalRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "exit 42"},
	})

	require.NoError(t, err, "command ran, just had non-zero exit")
	assert.Equal(t, 42, res.ExitCode)
}

func TestLocalRunner_ArgsNotShellInterpreted(t *testing.T) {
	res, err := NewLocalRunner().Run(context.Background(), Command{
		Name: "echo",
		Args: []string{"$HOME", "`id`", "a;b"},
	})

	require.NoError(t, err)
	assert.Equal(t, "$HOME `id` a;b\n", string(res.Stdout))
}

func TestLocalRunner_Env(t *testing.T) {
	res, err := NewLocalRunner().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo $BACKLIGHT_TEST_VAR"},
		Env:  []string{"BACKLIGHT_TEST_VAR=hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(res.Stdout))
}

func TestLocalRunner_MissingBinary(t *testing.T) {
	res, err := NewLocalRunner().Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})

	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
	assert.True(t, errors.IsCode(err, errors.ErrExec))
}

func TestLocalRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewLocalRunner().Run(ctx, Command{Name: "sleep", Args: []string{"5"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "ssh", Args: []string{"-o", "BatchMode=yes", "root@tv"}}
	assert.Equal(t, "ssh -o BatchMode=yes root@tv", c.String())
	assert.Equal(t, "ssh", Command{Name: "ssh"}.String())
}

package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
	"github.com/rileyhilliard/backlight/internal/exec/exectest"
	"github.com/rileyhilliard/backlight/pkg/sshutil/sshtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.Settings {
	return config.Settings{
		TVIP:       "192.168.1.20",
		SSHUser:    "root",
		SSHKeyPath: "/tmp/id_ed25519",
		SSHTimeout: 5,
		Transport:  config.TransportOpenSSH,
	}
}

func TestOpenSSH_Success(t *testing.T) {
	fake := exectest.New(exectest.Stdout(`{"returnValue":true}`))
	r := NewOpenSSH(fake)

	out, err := r.Run(context.Background(), testSettings(), "true")
	require.NoError(t, err)
	assert.Equal(t, `{"returnValue":true}`, out)

	cmds := fake.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "ssh", cmds[0].Name)
	assert.Equal(t, "root@192.168.1.20", cmds[0].Args[len(cmds[0].Args)-2])
}

func TestOpenSSH_ConnectionFailure(t *testing.T) {
	fake := exectest.New(func(exec.Command) (exec.Result, error) {
		return exec.Result{Stderr: []byte("ssh: connect to host 192.168.1.20 port 22: No route to host"), ExitCode: 255}, nil
	})

	_, err := NewOpenSSH(fake).Run(context.Background(), testSettings(), "true")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
	assert.Contains(t, err.Error(), "No route to host")
}

func TestOpenSSH_RemoteFailure(t *testing.T) {
	fake := exectest.New(func(exec.Command) (exec.Result, error) {
		return exec.Result{Stdout: []byte("partial"), Stderr: []byte("luna-send: not found"), ExitCode: 127}, nil
	})

	out, err := NewOpenSSH(fake).Run(context.Background(), testSettings(), "true")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRemote))
	assert.Equal(t, "partial", out)
	assert.Contains(t, err.Error(), "127")
}

func TestOpenSSH_BinaryMissing(t *testing.T) {
	fake := exectest.New(func(exec.Command) (exec.Result, error) {
		return exec.Result{ExitCode: -1}, errors.New(errors.ErrExec, "ssh not found", "")
	})

	_, err := NewOpenSSH(fake).Run(context.Background(), testSettings(), "true")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSSH))
}

func TestNative_RunsAgainstServer(t *testing.T) {
	dir := t.TempDir()
	keyPath, pub := sshtest.WriteKeyPair(t, dir, "id_ed25519")
	srv := sshtest.NewServer(t, pub, func(cmd string) (string, int) {
		if cmd == "false" {
			return "", 1
		}
		return `{"returnValue":true,"isRunning":true}`, 0
	})

	cfgPath := filepath.Join(dir, "ssh_config")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("Host %s\n  Port %s\n", srv.Host, srv.Port)), 0600))

	s := testSettings()
	s.TVIP = srv.Host
	s.SSHKeyPath = keyPath
	s.Transport = config.TransportNative

	n := &Native{ConfigPath: cfgPath}

	out, err := n.Run(context.Background(), s, RemoteCommand(ActionStatus))
	require.NoError(t, err)
	assert.Contains(t, out, `"isRunning":true`)

	_, err = n.Run(context.Background(), s, "false")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRemote))

	execs := srv.Execs()
	require.Len(t, execs, 2)
	assert.Equal(t, RemoteCommand(ActionStatus), execs[0].Command)
}

func TestRunnerFor(t *testing.T) {
	s := testSettings()
	assert.IsType(t, &OpenSSH{}, RunnerFor(s, exectest.New(nil)))

	s.Transport = config.TransportNative
	assert.IsType(t, &Native{}, RunnerFor(s, exectest.New(nil)))
}

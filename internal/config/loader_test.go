package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withoutStorage points storageRoot at a directory that doesn't exist so
// defaults resolve under HOME.
func withoutStorage(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	orig := storageRoot
	storageRoot = filepath.Join(home, "no-storage")
	t.Cleanup(func() { storageRoot = orig })
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := withoutStorage(t)

	s, err := Load(filepath.Join(home, "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "", s.TVIP)
	assert.False(t, s.Configured())
	assert.Equal(t, "root", s.SSHUser)
	assert.Equal(t, filepath.Join(home, ".ssh", "id_ed25519"), s.SSHKeyPath)
	assert.Equal(t, 5, s.SSHTimeout)
	assert.Equal(t, TransportOpenSSH, s.Transport)
	assert.Equal(t, "red", s.Button)
	assert.Equal(t, filepath.Join(home, ".kodi", "userdata", "keymaps"), s.KeymapDir)
}

func TestLoad_StorageRootDefaults(t *testing.T) {
	withoutStorage(t)
	storage := t.TempDir()
	storageRoot = storage

	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(storage, ".ssh", "id_ed25519"), s.SSHKeyPath)
	assert.Equal(t, filepath.Join(storage, ".kodi", "userdata", "keymaps"), s.KeymapDir)
}

func TestLoad_FileValues(t *testing.T) {
	home := withoutStorage(t)
	path := writeConfig(t, `# TV in the living room
tv_ip: 192.168.1.20
ssh_user: admin
ssh_key_path: ~/.ssh/tv_key
ssh_timeout: 9
transport: Native
button: blue
log_file: ~/backlight.log
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.20", s.TVIP)
	assert.True(t, s.Configured())
	assert.Equal(t, "admin", s.SSHUser)
	assert.Equal(t, filepath.Join(home, ".ssh", "tv_key"), s.SSHKeyPath)
	assert.Equal(t, 9, s.SSHTimeout)
	assert.Equal(t, TransportNative, s.Transport)
	assert.Equal(t, "blue", s.Button)
	assert.Equal(t, filepath.Join(home, "backlight.log"), s.LogFile)
}

func TestLoad_EmptyValuesFallBack(t *testing.T) {
	withoutStorage(t)
	path := writeConfig(t, `tv_ip: ""
ssh_user: ""
ssh_timeout: 0
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "root", s.SSHUser)
	assert.Equal(t, 5, s.SSHTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	withoutStorage(t)
	path := writeConfig(t, "tv_ip: 192.168.1.20\n")
	t.Setenv("BACKLIGHT_TV_IP", "10.0.0.7")
	t.Setenv("BACKLIGHT_SSH_TIMEOUT", "12")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", s.TVIP)
	assert.Equal(t, 12, s.SSHTimeout)
}

func TestLoad_InvalidYAML(t *testing.T) {
	withoutStorage(t)
	path := writeConfig(t, "tv_ip: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestSettingsHelpers(t *testing.T) {
	s := Settings{TVIP: "192.168.1.20", SSHUser: "root", SSHKeyPath: "/k/id_ed25519", SSHTimeout: 5}

	assert.Equal(t, "root@192.168.1.20", s.Target())
	assert.Equal(t, 5*time.Second, s.Timeout())
	assert.Equal(t, "5", s.TimeoutArg())
	assert.Equal(t, "/k/id_ed25519.pub", s.PublicKeyPath())

	moved := s.WithTVIP("10.0.0.2")
	assert.Equal(t, "10.0.0.2", moved.TVIP)
	assert.Equal(t, "192.168.1.20", s.TVIP, "WithTVIP must not mutate the receiver")
}

func TestExpandHome(t *testing.T) {
	home := withoutStorage(t)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".ssh/id"), ExpandHome("~/.ssh/id"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/spf13/viper"
)

const (
	// GlobalConfigDir is the directory for the config file, relative to home.
	GlobalConfigDir = ".config/backlight"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. BACKLIGHT_TV_IP.
	EnvPrefix = "BACKLIGHT"
)

// Defaults applied when the config file leaves a value empty.
const (
	DefaultSSHUser    = "root"
	DefaultSSHTimeout = 5
	DefaultButton     = "red"
	DefaultTransport  = TransportOpenSSH
)

// storageRoot is the writable root on LibreELEC/CoreELEC systems. When it
// exists, keys and keymaps default to living under it.
var storageRoot = "/storage"

// DefaultPath returns ~/.config/backlight/config.yaml.
func DefaultPath() string {
	return filepath.Join(homeDir(), GlobalConfigDir, GlobalConfigFile)
}

// DefaultKeyPath returns the default private key location.
func DefaultKeyPath() string {
	if isDir(storageRoot) {
		return filepath.Join(storageRoot, ".ssh", "id_ed25519")
	}
	return filepath.Join(homeDir(), ".ssh", "id_ed25519")
}

// DefaultKeymapDir returns the default Kodi keymap directory.
func DefaultKeymapDir() string {
	if isDir(storageRoot) {
		return filepath.Join(storageRoot, ".kodi", "userdata", "keymaps")
	}
	return filepath.Join(homeDir(), ".kodi", "userdata", "keymaps")
}

// DefaultSettings returns settings with every default filled in and no TV.
func DefaultSettings() Settings {
	return Settings{
		SSHUser:    DefaultSSHUser,
		SSHKeyPath: DefaultKeyPath(),
		SSHTimeout: DefaultSSHTimeout,
		Transport:  DefaultTransport,
		Button:     DefaultButton,
		KeymapDir:  DefaultKeymapDir(),
	}
}

// Load reads settings from path (DefaultPath when empty). A missing file is
// not an error; defaults and BACKLIGHT_* environment overrides still apply.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check that "+path+" is valid YAML")
		}
	} else if !os.IsNotExist(err) {
		return Settings{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot access config file: "+path,
			"Check file permissions")
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return normalize(s), nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("tv_ip", "")
	v.SetDefault("ssh_user", d.SSHUser)
	v.SetDefault("ssh_key_path", d.SSHKeyPath)
	v.SetDefault("ssh_timeout", d.SSHTimeout)
	v.SetDefault("transport", d.Transport)
	v.SetDefault("button", d.Button)
	v.SetDefault("keymap_dir", d.KeymapDir)
	v.SetDefault("log_file", "")
}

// normalize fills empty values with defaults and expands ~ in paths.
func normalize(s Settings) Settings {
	d := DefaultSettings()

	s.TVIP = strings.TrimSpace(s.TVIP)
	if s.SSHUser == "" {
		s.SSHUser = d.SSHUser
	}
	if s.SSHKeyPath == "" {
		s.SSHKeyPath = d.SSHKeyPath
	}
	if s.SSHTimeout == 0 {
		s.SSHTimeout = d.SSHTimeout
	}
	if s.Transport == "" {
		s.Transport = d.Transport
	}
	s.Transport = strings.ToLower(s.Transport)
	if s.Button == "" {
		s.Button = d.Button
	}
	if s.KeymapDir == "" {
		s.KeymapDir = d.KeymapDir
	}

	s.SSHKeyPath = ExpandHome(s.SSHKeyPath)
	s.KeymapDir = ExpandHome(s.KeymapDir)
	s.LogFile = ExpandHome(s.LogFile)

	return s
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

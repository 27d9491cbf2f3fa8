package config

import (
	"strconv"
	"time"
)

// Transport names for reaching the TV.
const (
	TransportOpenSSH = "openssh" // exec the system ssh binary
	TransportNative  = "native"  // in-process golang.org/x/crypto/ssh client
)

// Settings is everything an operation needs to reach the TV. It is loaded
// fresh for every invocation and handed down by value.
type Settings struct {
	// TVIP is the address of the TV. Empty means setup hasn't run yet.
	TVIP string `yaml:"tv_ip" mapstructure:"tv_ip"`

	// SSHUser is the login on the TV (rooted webOS uses root).
	SSHUser string `yaml:"ssh_user" mapstructure:"ssh_user"`

	// SSHKeyPath is the private key; the public half lives next to it with a .pub suffix.
	SSHKeyPath string `yaml:"ssh_key_path" mapstructure:"ssh_key_path"`

	// SSHTimeout is the connect timeout in whole seconds.
	SSHTimeout int `yaml:"ssh_timeout" mapstructure:"ssh_timeout"`

	// Transport selects how SSH commands are run: openssh or native.
	Transport string `yaml:"transport" mapstructure:"transport"`

	// Button is the remote-control button bound to toggle by the setup wizard.
	Button string `yaml:"button" mapstructure:"button"`

	// KeymapDir is where the generated key-mapping document is written.
	KeymapDir string `yaml:"keymap_dir" mapstructure:"keymap_dir"`

	// LogFile receives structured logs. Empty disables file logging.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// Configured reports whether a TV address has been set.
func (s Settings) Configured() bool {
	return s.TVIP != ""
}

// Timeout returns SSHTimeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.SSHTimeout) * time.Second
}

// TimeoutArg returns SSHTimeout formatted for ssh's ConnectTimeout option.
func (s Settings) TimeoutArg() string {
	return strconv.Itoa(s.SSHTimeout)
}

// Target returns user@ip for ssh.
func (s Settings) Target() string {
	return s.SSHUser + "@" + s.TVIP
}

// PublicKeyPath returns the path of the public half of SSHKeyPath.
func (s Settings) PublicKeyPath() string {
	return s.SSHKeyPath + ".pub"
}

// WithTVIP returns a copy of s pointing at ip.
func (s Settings) WithTVIP(ip string) Settings {
	s.TVIP = ip
	return s
}

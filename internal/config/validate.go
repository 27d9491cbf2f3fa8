package config

import (
	"fmt"
	"net"
	"regexp"

	"github.com/rileyhilliard/backlight/internal/errors"
)

// hostnamePattern accepts RFC 1123 style hostnames such as lgwebostv.local.
var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*$`)

// Validate checks settings for values that would break every SSH call.
func Validate(s Settings) error {
	if s.TVIP != "" {
		if err := ValidateAddress(s.TVIP); err != nil {
			return err
		}
	}

	if s.SSHUser == "" {
		return errors.New(errors.ErrConfig,
			"ssh_user is empty",
			"Set ssh_user in the config file (rooted webOS TVs use root)")
	}

	if s.SSHKeyPath == "" {
		return errors.New(errors.ErrConfig,
			"ssh_key_path is empty",
			"Set ssh_key_path, e.g. ~/.ssh/id_ed25519")
	}

	if s.SSHTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("ssh_timeout must be positive, got %d", s.SSHTimeout),
			"Set ssh_timeout to a number of seconds, e.g. 5")
	}

	switch s.Transport {
	case TransportOpenSSH, TransportNative:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown transport %q", s.Transport),
			"Use transport: openssh or transport: native")
	}

	return nil
}

// ValidateAddress accepts an IP address or a hostname.
func ValidateAddress(addr string) error {
	if net.ParseIP(addr) != nil {
		return nil
	}
	if len(addr) <= 253 && hostnamePattern.MatchString(addr) {
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("%q is not an IP address or hostname", addr),
		"Enter the TV's address, e.g. 192.168.1.20")
}

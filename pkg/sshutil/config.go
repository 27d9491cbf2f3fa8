package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry holds the connection overrides ~/.ssh/config carries for a host.
type HostEntry struct {
	Hostname string // HostName, empty when not overridden
	Port     string // Port, empty when not overridden
}

// DefaultConfigPath returns ~/.ssh/config.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// LookupHost returns the HostName and Port the SSH config at configPath
// assigns to host. A missing or unparsable config yields an empty entry.
func LookupHost(configPath, host string) HostEntry {
	content, err := preprocessSSHConfig(configPath)
	if err != nil {
		return HostEntry{}
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return HostEntry{}
	}

	var entry HostEntry
	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		entry.Hostname = hostname
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		entry.Port = port
	}
	return entry
}

// preprocessSSHConfig reads the SSH config up to the first Match
// directive, which the ssh_config library can't parse.
func preprocessSSHConfig(configPath string) ([]byte, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			lines = lines[:i]
			break
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rileyhilliard/backlight/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The host as given by the caller
	Address string // The resolved address (host:port)
}

// Target describes one TV login.
type Target struct {
	Host    string // IP or hostname
	User    string
	KeyPath string        // private key file
	Timeout time.Duration // dial + handshake timeout

	// ConfigPath is the ssh_config consulted for HostName/Port overrides.
	// Empty means ~/.ssh/config.
	ConfigPath string
}

// Dial establishes an SSH connection to the target using its key file.
// Host keys are not verified: TVs regenerate them on firmware resets and
// the OpenSSH transport runs with StrictHostKeyChecking=no as well.
func Dial(t Target) (*Client, error) {
	s := resolve(t)

	auth, err := keyFileAuth(t.KeyPath)
	if err != nil {
		var encErr *EncryptedKeyError
		if stderrors.As(err, &encErr) {
			return nil, errors.New(errors.ErrSSH,
				encErr.Error(),
				"Use a key without a passphrase, or switch to transport: openssh with ssh-agent")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't load SSH key %s", t.KeyPath),
			"Run 'backlight setup' to generate and install a key")
	}

	config := &ssh.ClientConfig{
		User:            t.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // see Dial doc
		Timeout:         t.Timeout,
	}

	address := s.address()
	conn, err := net.DialTimeout("tcp", address, t.Timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", t.Host, address),
			suggestionForDialError(err))
	}

	if t.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(t.Timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", t.Host),
			suggestionForHandshakeError(err))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    t.Host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname string
	port     string
}

// address returns the host:port string for dialing.
func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolve applies ~/.ssh/config HostName and Port overrides for the target.
func resolve(t Target) *sshSettings {
	s := &sshSettings{hostname: t.Host, port: "22"}

	configPath := t.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	entry := LookupHost(configPath, t.Host)
	if entry.Hostname != "" {
		s.hostname = entry.Hostname
	}
	if entry.Port != "" {
		s.port = entry.Port
	}
	return s
}

// keyFileAuth returns an auth method using a private key file.
// Returns EncryptedKeyError if the key requires a passphrase.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || isEncryptedPEM(key) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// isEncryptedPEM checks if PEM data contains encryption markers.
func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH enabled on the TV? Check the Homebrew Channel root settings."
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the TV. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") {
		return "Connection timed out. The TV might be off or on another network."
	}
	return "Make sure the TV is reachable: ping <ip>"
}

func suggestionForHandshakeError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		return "The TV rejected the key. Run 'backlight setup' to install it."
	}
	return "Something went wrong during SSH setup. Try: ssh root@<ip>"
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
	"github.com/rileyhilliard/backlight/internal/logger"
	"golang.org/x/crypto/ssh"
)

// KeyComment is written into generated public keys.
const KeyComment = "backlight"

// Provisioner runs the local ssh tooling needed to set up key access.
type Provisioner struct {
	Exec exec.Runner
	Log  logger.Logger

	// SSHBinary and KeygenBinary default to "ssh" and "ssh-keygen".
	SSHBinary    string
	KeygenBinary string
}

// NewProvisioner returns a Provisioner that runs commands through r.
func NewProvisioner(r exec.Runner, log logger.Logger) *Provisioner {
	if log == nil {
		log = logger.Noop()
	}
	return &Provisioner{Exec: r, Log: log, SSHBinary: "ssh", KeygenBinary: "ssh-keygen"}
}

func (p *Provisioner) log() logger.Logger {
	if p.Log == nil {
		return logger.Noop()
	}
	return p.Log
}

func (p *Provisioner) sshBinary() string {
	if p.SSHBinary == "" {
		return "ssh"
	}
	return p.SSHBinary
}

func (p *Provisioner) keygenBinary() string {
	if p.KeygenBinary == "" {
		return "ssh-keygen"
	}
	return p.KeygenBinary
}

// KeyExists reports whether a private key file exists at path.
func KeyExists(path string) bool {
	info, err := os.Stat(config.ExpandHome(path))
	return err == nil && !info.IsDir()
}

// EnsureKey makes sure a private key exists at path, generating an ed25519
// pair when it doesn't. generated reports whether a new key was created.
func (p *Provisioner) EnsureKey(ctx context.Context, path string) (generated bool, err error) {
	path = config.ExpandHome(path)
	if path == "" {
		return false, errors.New(errors.ErrSetup,
			"No SSH key path configured",
			"Set ssh_key_path in the config file")
	}
	if KeyExists(path) {
		p.log().Debug("ssh key already present at %s", path)
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrSetup,
			fmt.Sprintf("Failed to create SSH directory: %s", dir),
			"Check permissions on the parent directory")
	}

	res, err := p.Exec.Run(ctx, exec.Command{
		Name: p.keygenBinary(),
		Args: []string{"-t", "ed25519", "-N", "", "-f", path, "-C", KeyComment},
	})
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrSetup,
			"Couldn't run ssh-keygen",
			"Install the OpenSSH client tools")
	}
	if res.ExitCode != 0 {
		return false, errors.New(errors.ErrSetup,
			fmt.Sprintf("Failed to generate SSH key: %s", res.Combined()),
			"Try by hand: ssh-keygen -t ed25519 -f "+path)
	}

	if !KeyExists(path) {
		return false, errors.New(errors.ErrSetup,
			"Key generation completed but key file not found",
			"Check disk space and permissions")
	}

	p.log().Info("generated ssh key %s", path)
	return true, nil
}

// PublicKey returns the authorized_keys line stored next to the private
// key at keyPath. The line is checked to be a well-formed public key.
func PublicKey(keyPath string) (string, error) {
	pubPath := config.ExpandHome(keyPath) + ".pub"
	data, err := os.ReadFile(pubPath)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSetup,
			fmt.Sprintf("Failed to read public key: %s", pubPath),
			"Check that the file exists and is readable")
	}

	line := strings.TrimSpace(string(data))
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrSetup,
			fmt.Sprintf("%s is not a valid public key", pubPath),
			"Delete the key pair and run setup again to regenerate it")
	}
	return line, nil
}

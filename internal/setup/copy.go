package setup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/backlight/internal/config"
	"github.com/rileyhilliard/backlight/internal/errors"
	"github.com/rileyhilliard/backlight/internal/exec"
	"github.com/rileyhilliard/backlight/internal/util"
)

// authorizeCommand appends key to the TV's authorized_keys unless it is
// already there, fixing permissions on the way.
func authorizeCommand(key string) string {
	q := util.ShellQuote(key)
	return "mkdir -p ~/.ssh && chmod 700 ~/.ssh && touch ~/.ssh/authorized_keys && " +
		"(grep -qxF " + q + " ~/.ssh/authorized_keys || echo " + q + " >> ~/.ssh/authorized_keys) && " +
		"chmod 600 ~/.ssh/authorized_keys"
}

// askpassScript is an SSH_ASKPASS program that prints password.
func askpassScript(password string) string {
	return "#!/bin/sh\nprintf '%s\\n' " + util.ShellQuote(password) + "\n"
}

// writeAskpass writes the askpass script into a fresh private directory
// and returns its path and a cleanup func that removes both.
func writeAskpass(password string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "backlight-askpass-")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, "askpass")
	if err := os.WriteFile(path, []byte(askpassScript(password)), 0700); err != nil {
		cleanup()
		return "", func() {}, err
	}
	// WriteFile honours umask; the script must be executable by its owner.
	if err := os.Chmod(path, 0700); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return path, cleanup, nil
}

// CopyKey installs the local public key on the TV, logging in once with
// password.
func (p *Provisioner) CopyKey(ctx context.Context, s config.Settings, password string) error {
	if password == "" {
		return errors.New(errors.ErrSetup,
			"No password given",
			"Enter the TV's root password, or copy the key by hand")
	}

	key, err := PublicKey(s.SSHKeyPath)
	if err != nil {
		return err
	}

	askpass, cleanup, err := writeAskpass(password)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSetup,
			"Couldn't write the password helper",
			"Check that the temp directory is writable")
	}
	defer cleanup()

	args := append(baseOptions(s),
		"-o", "PreferredAuthentications=password,keyboard-interactive",
		"-o", "PubkeyAuthentication=no",
		"-o", "NumberOfPasswordPrompts=1",
		s.Target(),
		authorizeCommand(key),
	)

	p.log().Info("copying public key to %s", s.Target())
	res, err := p.Exec.Run(ctx, exec.Command{
		Name: p.sshBinary(),
		Args: args,
		Env: []string{
			"SSH_ASKPASS=" + askpass,
			"SSH_ASKPASS_REQUIRE=force",
			"DISPLAY=backlight:0",
		},
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSetup,
			"Couldn't run ssh",
			"Install the OpenSSH client")
	}

	if res.ExitCode != 0 {
		out := res.Combined()
		if isAuthFailure(out) {
			return errors.New(errors.ErrSetup,
				fmt.Sprintf("The TV at %s rejected the password", s.TVIP),
				"Double-check the password and try again.")
		}
		return errors.New(errors.ErrSetup,
			fmt.Sprintf("Couldn't copy the SSH key to %s", s.TVIP),
			suggestionFor(out, s.TVIP))
	}

	return nil
}

// CopyKeyManual returns instructions for installing the key by hand.
func CopyKeyManual(s config.Settings) string {
	pubPath := s.PublicKeyPath()
	key, err := PublicKey(s.SSHKeyPath)
	if err != nil {
		return fmt.Sprintf(`To copy your SSH key manually:

1. Display your public key:
   cat %s

2. Log in to the TV and append it:
   ssh %s "mkdir -p ~/.ssh && chmod 700 ~/.ssh && cat >> ~/.ssh/authorized_keys" << 'EOF'
   <paste your public key here>
   EOF

3. Set correct permissions:
   ssh %s "chmod 600 ~/.ssh/authorized_keys"
`, pubPath, s.Target(), s.Target())
	}

	return fmt.Sprintf(`To copy your SSH key manually, run:

ssh %s %s
`, s.Target(), util.ShellQuote(authorizeCommand(key)))
}

// Package setup provisions key-based SSH access to the TV.
//
// # Keys
//
// EnsureKey creates an ed25519 key pair with ssh-keygen when none exists
// at the configured path. An existing key is never touched, so running
// setup again is harmless:
//
//	generated, err := p.EnsureKey(ctx, "/storage/.ssh/id_ed25519")
//
// Keys are generated without a passphrase: the helper runs unattended
// from a remote button, where nothing could answer a passphrase prompt.
//
// # Connection testing
//
// TestConnection runs a trivial remote echo in ssh batch mode. It returns
// false with a nil error when the TV answered but rejected the key, and an
// error when the TV could not be reached at all.
//
// # Key copy
//
// Rooted webOS TVs ship without ssh-copy-id on either side, so CopyKey
// appends the public key itself. The password reaches ssh through a
// single-use SSH_ASKPASS script:
//
//	err := p.CopyKey(ctx, settings, password)
//
// The script is owner-only, lives in a private temp directory and is
// removed before CopyKey returns, whatever the outcome. The password and
// key are shell-quoted wherever they are embedded.
//
// CopyKeyManual returns the commands a user can run by hand when the
// automatic copy fails.
package setup

// Package errors defines the structured error used across backlight.
// Each error carries a category code, a one-line message suitable for a
// notification, an optional cause and an optional hint for the user.
package errors

import (
	"errors"
	"strings"
)

// Categories.
const (
	ErrConfig    = "CONFIG"    // settings missing or invalid
	ErrSSH       = "SSH"       // the TV could not be reached or refused the login
	ErrRemote    = "REMOTE"    // the command ran but the service said no
	ErrDiscovery = "DISCOVERY" // SSDP search failed
	ErrSetup     = "SETUP"     // key generation or installation failed
	ErrKeymap    = "KEYMAP"    // the remote-button mapping could not be written
	ErrExec      = "EXEC"      // a local binary could not be started
)

// ErrCancelled is returned when the user declines or aborts an interactive prompt.
var ErrCancelled = errors.New("cancelled by user")

// Error is a categorised failure. Error() renders it as
//
//	✗ <message>
//
//	  <cause>
//
//	  <suggestion>
//
// with the last two blocks omitted when empty.
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates an error without a cause.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// Wrap attaches message to err under the SSH category, which is where
// most wrapped transport failures belong.
func Wrap(err error, message string) *Error {
	return WrapWithCode(err, ErrSSH, message, "")
}

// WrapWithCode attaches a category, message and suggestion to err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("✗ ")
	b.WriteString(e.Message)
	b.WriteByte('\n')
	for _, block := range []string{causeText(e.Cause), e.Suggestion} {
		if block != "" {
			b.WriteString("\n  ")
			b.WriteString(block)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err is, or wraps, an *Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsCancelled reports whether err is, or wraps, ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// Summary returns the one-line message of a structured error, or the
// trimmed err.Error() for anything else.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return strings.TrimSpace(err.Error())
}

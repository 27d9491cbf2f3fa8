// Package ui provides the terminal surface of the backlight CLI.
//
// # Notifications
//
// Console renders one-line notifications prefixed with the app name and a
// level-coloured symbol:
//
//	c := ui.NewConsole(os.Stdout, os.Stderr)
//	c.Notify(ui.LevelInfo, "On")   // ● Backlight: On
//
// Warnings and errors go to the error stream.
//
// # Prompts
//
// Prompter asks questions through Huh forms. Aborting any form (Ctrl+C or
// Esc) returns errors.ErrCancelled so callers can stop without reporting
// a failure. When stdin is not a terminal the forms run in accessible
// mode and read plain lines.
//
// # Spinners
//
// Spinner runs a blocking function while a Bubble Tea spinner animates:
//
//	err := ui.NewSpinner(os.Stdout).Run("Searching for TVs", func() error {
//		results, err = d.Discover(ctx)
//		return err
//	})
//
// Without a terminal it prints the label and the final status line only.
//
// # Color Scheme
//
//	ColorSuccess (green)  - Successful operations
//	ColorError   (red)    - Failures and errors
//	ColorWarning (yellow) - Warnings
//	ColorInfo    (cyan)   - Informational messages
//	ColorMuted   (gray)   - Timing info
//	ColorAccent  (blue)   - The spinner
package ui

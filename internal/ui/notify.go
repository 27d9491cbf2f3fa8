package ui

import (
	"fmt"
	"io"
	"strings"
)

// AppName prefixes every notification.
const AppName = "Backlight"

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Console writes notifications to the terminal.
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a Console writing info and success to out and
// warnings and errors to errOut.
func NewConsole(out, errOut io.Writer) *Console {
	return &Console{Out: out, Err: errOut}
}

// Notify prints a one-line notification. Only the first line of message
// is shown.
func (c *Console) Notify(level Level, message string) {
	w := c.Out
	if level >= LevelWarning && c.Err != nil {
		w = c.Err
	}
	if w == nil {
		return
	}
	fmt.Fprintln(w, FormatNotification(level, message))
}

// Println writes plain text to the output stream.
func (c *Console) Println(text string) {
	if c.Out != nil {
		fmt.Fprintln(c.Out, text)
	}
}

// FormatNotification renders "<symbol> Backlight: <message>".
func FormatNotification(level Level, message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	b, ok := levelBadges[level]
	if !ok {
		b = levelBadges[LevelInfo]
	}
	return b.String() + " " + boldStyle.Render(AppName+":") + " " + strings.TrimSpace(message)
}

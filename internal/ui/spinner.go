package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// SpinnerFrames are the animation frames of the status spinner.
var SpinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// Spinner runs blocking work behind an animated status line.
type Spinner struct {
	Out io.Writer
	// Interactive enables the animation; otherwise only the label and the
	// final line are printed.
	Interactive bool
}

// NewSpinner returns a Spinner on out, animated when out is a terminal.
func NewSpinner(out io.Writer) *Spinner {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Spinner{Out: out, Interactive: interactive}
}

// Run calls fn and returns its error.
func (s *Spinner) Run(label string, fn func() error) error {
	if s.Out == nil {
		return fn()
	}
	if !s.Interactive {
		return s.runPlain(label, fn)
	}

	p := tea.NewProgram(newSpinnerModel(label), tea.WithOutput(s.Out), tea.WithInput(nil))

	errCh := make(chan error, 1)
	go func() {
		err := fn()
		errCh <- err
		p.Send(workDoneMsg{err: err})
	}()

	// A failed render doesn't cancel the work.
	_, _ = p.Run()
	return <-errCh
}

func (s *Spinner) runPlain(label string, fn func() error) error {
	fmt.Fprintf(s.Out, "%s %s...\n", SymbolProgress, label)

	line := newStatusLine(label)
	err := fn()
	line.finish(err)
	fmt.Fprintln(s.Out, line.view(""))
	return err
}

type phase int

const (
	phaseRunning phase = iota
	phaseSucceeded
	phaseFailed
)

// statusLine is one labelled step with its elapsed time.
type statusLine struct {
	label   string
	phase   phase
	started time.Time
	elapsed time.Duration
}

func newStatusLine(label string) statusLine {
	return statusLine{label: label, started: time.Now()}
}

func (l *statusLine) finish(err error) {
	l.elapsed = time.Since(l.started)
	if err != nil {
		l.phase = phaseFailed
	} else {
		l.phase = phaseSucceeded
	}
}

// view renders the line; frame is the spinner glyph while running.
func (l statusLine) view(frame string) string {
	switch l.phase {
	case phaseSucceeded:
		return badgeSucceeded.String() + " " + l.label + " " + mutedStyle.Render(formatDuration(l.elapsed))
	case phaseFailed:
		return badgeFailed.String() + " " + l.label + " " + mutedStyle.Render(formatDuration(l.elapsed))
	default:
		return frame + " " + l.label + "..."
	}
}

type workDoneMsg struct{ err error }

// spinnerModel is the Bubble Tea model behind Spinner.Run.
type spinnerModel struct {
	spin spinner.Model
	line statusLine
}

func newSpinnerModel(label string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = SpinnerFrames
	sp.Style = sp.Style.Foreground(ColorAccent)
	return spinnerModel{spin: sp, line: newStatusLine(label)}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.line.finish(msg.err)
		return m, tea.Quit
	case spinner.TickMsg:
		if m.line.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.line.phase != phaseRunning {
		return m.line.view("") + "\n"
	}
	return m.line.view(m.spin.View())
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}

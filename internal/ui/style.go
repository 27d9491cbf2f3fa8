package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette indexes, so the terminal theme picks the actual shades.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorInfo    lipgloss.Color = "6"
	ColorAccent  lipgloss.Color = "4"
	ColorMuted   lipgloss.Color = "8"
)

// Status symbols.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolWarning  = "⚠"
	SymbolInfo     = "●"
	SymbolProgress = "◐"
)

var (
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

// badge is a coloured status symbol.
type badge struct {
	symbol string
	color  lipgloss.Color
}

func (b badge) String() string {
	return lipgloss.NewStyle().Foreground(b.color).Render(b.symbol)
}

var levelBadges = map[Level]badge{
	LevelInfo:    {SymbolInfo, ColorInfo},
	LevelSuccess: {SymbolSuccess, ColorSuccess},
	LevelWarning: {SymbolWarning, ColorWarning},
	LevelError:   {SymbolFail, ColorError},
}

var (
	badgeSucceeded = badge{SymbolSuccess, ColorSuccess}
	badgeFailed    = badge{SymbolFail, ColorError}
)

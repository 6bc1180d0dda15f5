package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorIndigo  = lipgloss.Color("#6366F1")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// Base styles reused by the views.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	InputLabelStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	CursorStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	ProgressFillStyle = lipgloss.NewStyle().
				Foreground(ColorIndigo)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(ColorDimGray)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite)

	BulletStyle = lipgloss.NewStyle().
			Foreground(ColorIndigo)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

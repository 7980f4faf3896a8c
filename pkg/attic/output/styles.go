package output

import "github.com/charmbracelet/lipgloss"

// Color constants using the ANSI 256-color palette.
const (
	// ColorPrimary is used for headers (bright blue).
	ColorPrimary = lipgloss.Color("39")

	// ColorSuccess is used for verified/unchanged state (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorWarning is used for renames and metadata changes (orange).
	ColorWarning = lipgloss.Color("214")

	// ColorDanger is used for content changes and deletions (red).
	ColorDanger = lipgloss.Color("196")

	// ColorMuted is used for secondary text (gray).
	ColorMuted = lipgloss.Color("245")
)

var (
	// HeaderBox frames each section's title and scan stats.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// SuccessStyle marks fully verified sections.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// WarningStyle marks renames and metadata drift.
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	// DangerStyle marks content changes and deletions.
	DangerStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	// MutedStyle renders secondary details.
	MutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	Primary    = lipgloss.Color("#FF6B9D")
	Secondary  = lipgloss.Color("#C792EA")
	Success    = lipgloss.Color("#C3E88D")
	Warning    = lipgloss.Color("#FFCB6B")
	Error      = lipgloss.Color("#F07178")
	Info       = lipgloss.Color("#82AAFF")
	Muted      = lipgloss.Color("#546E7A")
	Background = lipgloss.Color("#263238")
	Foreground = lipgloss.Color("#EEFFFF")

	// Border styles
	RoundedBorder = lipgloss.RoundedBorder()
	ThickBorder   = lipgloss.ThickBorder()
)

// Base styles
var (
	// Title style for headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	// Normal text
	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	// Muted/dimmed text
	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Selected row
	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Card style
	CardStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Active/focused card
	ActiveCardStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Primary).
			Padding(0, 1)

	// Status styles
	StatusDownloading = lipgloss.NewStyle().
				Foreground(Info).
				Bold(true)

	StatusCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Progress bar styles
	ProgressBarStyle = lipgloss.NewStyle().
				Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(Muted)

	// Tab styles
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Background(lipgloss.Color("#37474F")).
			Padding(0, 2).
			Bold(true)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Padding(0, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)

	// Input field
	InputStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Focused input
	FocusedInputStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)

	// Quality badge next to the reader title
	BadgeStyle = lipgloss.NewStyle().
			Foreground(Background).
			Background(Warning).
			Bold(true).
			Padding(0, 1)

	// Navigation buttons
	ButtonStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(lipgloss.Color("#37474F")).
			Padding(0, 1)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Strikethrough(true).
				Padding(0, 1)

	// One page of a chapter in the reader
	PageStyle = lipgloss.NewStyle().
			Border(RoundedBorder).
			BorderForeground(Muted).
			Padding(0, 1)

	CurrentPageStyle = lipgloss.NewStyle().
				Border(RoundedBorder).
				BorderForeground(Primary).
				Padding(0, 1)

	// Chapter drawer overlay
	DrawerStyle = lipgloss.NewStyle().
			Border(ThickBorder).
			BorderForeground(Secondary).
			Padding(0, 1)
)

// StatusStyle picks the colour for a progress or publication status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "downloading", "processing", "ongoing":
		return StatusDownloading
	case "completed", "complete":
		return StatusCompleted
	case "error":
		return StatusError
	default:
		return MutedStyle
	}
}

// Button renders label as enabled or disabled.
func Button(label string, enabled bool) string {
	if enabled {
		return ButtonStyle.Render(label)
	}
	return DisabledButtonStyle.Render(label)
}

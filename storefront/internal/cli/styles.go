package cli

import "github.com/charmbracelet/lipgloss"

var (
	PrimaryColor = lipgloss.Color("#FB923C") // Orange
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	BorderColor  = lipgloss.Color("#6B7280")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	Muted = lipgloss.NewStyle().Foreground(MutedColor)
	Price = lipgloss.NewStyle().Bold(true)

	OpenBadge     = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	ClosedBadge   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	FallbackBadge = lipgloss.NewStyle().Foreground(WarningColor)

	ToastSuccess = lipgloss.NewStyle().Foreground(SuccessColor)
	ToastFailure = lipgloss.NewStyle().Foreground(ErrorColor)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)
)

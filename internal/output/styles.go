package output

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF4672")
	ColorWarning = lipgloss.Color("#F2C94C")
	ColorMuted   = lipgloss.Color("#6C7086")
)

// Console styles
var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SectionStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	LabelStyle       = lipgloss.NewStyle().Foreground(ColorMuted)
	PassStyle        = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	FailStyle        = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	WaivedStyle      = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true)
)

// StatusBadge renders PASSED, FAILED or WAIVED
func StatusBadge(passed, waived bool) string {
	switch {
	case waived:
		return WaivedStyle.Render("WAIVED")
	case passed:
		return PassStyle.Render("PASSED")
	default:
		return FailStyle.Render("FAILED")
	}
}

package tui

import (
	"social-support-wizard/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle()
	focusStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	modalStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

// directional right-aligns the whole screen for right-to-left languages.
func directional(lang models.Language, width int, s string) string {
	if lang.Direction() != "rtl" || width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(s)
}

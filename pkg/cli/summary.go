package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Labels and help text
	Warning lipgloss.Color // Warnings and poor metrics
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warning: lipgloss.Color("#ffb86c"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Key    lipgloss.Style
	Value  lipgloss.Style
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginTop(1),
		Key:    lipgloss.NewStyle().Foreground(t.Dim),
		Value:  lipgloss.NewStyle(),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme).
func DefaultStyles() Styles { return NewStyles(DefaultTheme) }

// Row is one key/value line of a section.
type Row struct {
	Key   string
	Value string
}

// Section represents a labeled group of rows.
type Section struct {
	Label string
	Rows  []Row
}

// RenderSummary renders a bordered box with a title and aligned sections.
func RenderSummary(s Styles, title string, sections []Section) string {
	keyWidth := 0
	for _, sec := range sections {
		for _, r := range sec.Rows {
			keyWidth = max(keyWidth, lipgloss.Width(r.Key))
		}
	}

	blocks := []string{s.Title.Render(title)}
	for _, sec := range sections {
		lines := []string{s.Label.Render(sec.Label)}
		for _, r := range sec.Rows {
			pad := strings.Repeat(" ", keyWidth-lipgloss.Width(r.Key))
			lines = append(lines, s.Key.Render(r.Key)+pad+"  "+s.Value.Render(r.Value))
		}
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return s.Border.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/wizard"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle colors a homily status by how far along the draft is.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusComplete:
		return StyleGreen
	case domain.StatusSecondDraft:
		return StyleBlue
	case domain.StatusRoughDraft:
		return StyleYellow
	default:
		return StyleDim
	}
}

// StatusPill returns a colored indicator such as "◐ Rough Draft".
func StatusPill(s domain.Status) string {
	var glyph string
	switch s {
	case domain.StatusComplete:
		glyph = "●"
	case domain.StatusSecondDraft:
		glyph = "◕"
	case domain.StatusRoughDraft:
		glyph = "◐"
	default:
		glyph = "○"
	}
	return StatusStyle(s).Render(glyph + " " + s.Label())
}

// Notification renders a wizard message with a level marker.
func Notification(n wizard.Notification) string {
	switch n.Level {
	case wizard.LevelSuccess:
		return StyleGreen.Render("✔ " + n.Message)
	case wizard.LevelError:
		return StyleRed.Render("✖ " + n.Message)
	default:
		return StyleBlue.Render("ℹ " + n.Message)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

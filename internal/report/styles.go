package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/CosmoTheDev/zwischen/models"
)

var (
	accent   = lipgloss.Color("#14B8A6") // teal
	green    = lipgloss.Color("#22C55E")
	yellow   = lipgloss.Color("#F59E0B")
	red      = lipgloss.Color("#EF4444")
	blue     = lipgloss.Color("#38BDF8")
	slate    = lipgloss.Color("#94A3B8")
	slateDim = lipgloss.Color("#64748B")
	ink      = lipgloss.Color("#E5E7EB")
)

// styles are bound to the writer's renderer, so output to a pipe or file
// carries no escape codes.
type styles struct {
	title    lipgloss.Style
	critical lipgloss.Style
	high     lipgloss.Style
	medium   lipgloss.Style
	low      lipgloss.Style
	ok       lipgloss.Style
	fix      lipgloss.Style
	risk     lipgloss.Style
	dim      lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(ink).
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(accent).
			Padding(0, 1),
		critical: r.NewStyle().Bold(true).Foreground(red),
		high:     r.NewStyle().Bold(true).Foreground(yellow),
		medium:   r.NewStyle().Foreground(blue),
		low:      r.NewStyle().Foreground(slate),
		ok:       r.NewStyle().Foreground(green),
		fix:      r.NewStyle().Foreground(green),
		risk:     r.NewStyle().Foreground(yellow),
		dim:      r.NewStyle().Foreground(slateDim),
	}
}

func (s styles) severity(level models.SeverityLevel) lipgloss.Style {
	switch level {
	case models.SeverityCritical:
		return s.critical
	case models.SeverityHigh:
		return s.high
	case models.SeverityMedium:
		return s.medium
	default:
		return s.low
	}
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/olliecrow/claude_stats/internal/usage"
)

type styles struct {
	title   lipgloss.Style
	neutral lipgloss.Style
	dim     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bad     lipgloss.Style
	accent  lipgloss.Style
	error   lipgloss.Style
	gauge   lipgloss.Style

	// Unfilled bar cells are drawn with a hollow glyph when color cannot
	// tell them apart.
	emptySegment string
	// Without color the status dots carry their state in the glyph.
	glyphDots bool
}

const (
	filledSegment = "▮"
	hollowSegment = "▯"
	statusDot     = "●"

	idleDot  = "○"
	slowDot  = "◐"
	errorDot = "✗"
)

func defaultStyles(noColor bool) styles {
	if noColor {
		return styles{
			title:        lipgloss.NewStyle().Bold(true),
			neutral:      lipgloss.NewStyle(),
			dim:          lipgloss.NewStyle(),
			ok:           lipgloss.NewStyle(),
			warn:         lipgloss.NewStyle().Bold(true),
			bad:          lipgloss.NewStyle().Bold(true),
			accent:       lipgloss.NewStyle(),
			error:        lipgloss.NewStyle().Bold(true),
			gauge:        lipgloss.NewStyle(),
			emptySegment: hollowSegment,
			glyphDots:    true,
		}
	}
	return styles{
		title:        lipgloss.NewStyle().Bold(true),
		neutral:      lipgloss.NewStyle(),
		dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ok:           lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		bad:          lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		error:        lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		gauge:        lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		emptySegment: filledSegment,
	}
}

func (s styles) tier(t usage.Tier) lipgloss.Style {
	switch t {
	case usage.TierAlert:
		return s.bad
	case usage.TierWarning:
		return s.warn
	case usage.TierDim:
		return s.dim
	default:
		return s.neutral
	}
}

func (s styles) health(h Health) lipgloss.Style {
	switch h {
	case HealthOk:
		return s.ok
	case HealthSlow:
		return s.warn
	case HealthError:
		return s.bad
	default:
		return s.dim
	}
}

func (s styles) activity(working bool) lipgloss.Style {
	if working {
		return s.accent
	}
	return s.dim
}

// healthDot renders the health indicator.
func (s styles) healthDot(h Health) string {
	glyph := statusDot
	if s.glyphDots {
		switch h {
		case HealthSlow:
			glyph = slowDot
		case HealthError:
			glyph = errorDot
		case HealthUnknown:
			glyph = idleDot
		}
	}
	return s.health(h).Render(glyph)
}

// activityDot renders the activity indicator.
func (s styles) activityDot(working bool) string {
	glyph := statusDot
	if s.glyphDots && !working {
		glyph = idleDot
	}
	return s.activity(working).Render(glyph)
}

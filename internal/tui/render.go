package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/olliecrow/claude_stats/internal/usage"
)

const (
	horizontalMargin = 2
	dotsWidth        = 4

	loadingText   = "Loading usage data..."
	defaultHeader = "Plan usage limits"
)

// canvas holds one pre-styled string per screen row.
type canvas struct {
	width int
	lines []string
}

func newCanvas(width, height int) *canvas {
	return &canvas{width: width, lines: make([]string, height)}
}

// put writes s at r's top-left cell, clipped to r's width.
func (c *canvas) put(r rect, s string) {
	if r.H <= 0 || r.W <= 0 || r.Y < 0 || r.Y >= len(c.lines) {
		return
	}
	c.lines[r.Y] = strings.Repeat(" ", r.X) + truncateRunes(s, r.W)
}

func (c *canvas) String() string {
	return clipToViewport(strings.Join(c.lines, "\n"), c.width, len(c.lines))
}

// render draws one frame of exactly height rows, each exactly width cells.
// It reads state and the clock only.
func render(s viewState, width, height int, now time.Time, st styles) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	c := newCanvas(width, height)
	area := rect{W: width, H: height}

	switch {
	case s.snapshot != nil:
		renderGauges(c, s, area, now, st)
	case s.working:
		c.put(area, st.dim.Render(loadingText))
	case s.err != "":
		c.put(area, st.error.Render("Error: "+singleLine(s.err)))
	}

	out := c.String()
	if width >= dotsWidth {
		out = overlayDots(out, width, s, st)
	}
	return out
}

func renderGauges(c *canvas, s viewState, area rect, now time.Time, st styles) {
	slots := s.snapshot.Present()

	constraints := []constraint{length(1), length(1), length(1)}
	for i := range slots {
		constraints = append(constraints, length(1), length(1), length(1))
		if i < len(slots)-1 {
			constraints = append(constraints, length(1))
		}
	}
	constraints = append(constraints, fill())
	rows := splitVertical(area, constraints)

	header := defaultHeader
	if s.plan != "" {
		header = s.plan + " — usage limits"
	}
	c.put(inset(rows[1], horizontalMargin), st.title.Render(header))

	i := 3
	for n, slot := range slots {
		limit := s.snapshot.Limit(slot)
		percent := limit.Percent()
		tierStyle := st.tier(usage.PercentTier(percent))

		c.put(inset(rows[i], horizontalMargin),
			st.neutral.Render(slot.Label())+tierStyle.Render(fmt.Sprintf(" (%d%%)", percent)))

		bar := inset(rows[i+1], horizontalMargin)
		c.put(bar, renderBar(percent, bar.W, tierStyle, st))

		// The countdown row stays reserved even when there is nothing to show.
		if slot.ShowsCountdown() {
			if remaining, ok := limit.RemainingSeconds(now); ok {
				resetStyle := st.tier(usage.ResetTier(percent, remaining))
				c.put(inset(rows[i+2], horizontalMargin), resetStyle.Render("Resets in "+usage.FormatRemaining(remaining)))
			}
		}

		i += 3
		if n < len(slots)-1 {
			i++
		}
	}
}

func renderBar(percent, width int, filledStyle lipgloss.Style, st styles) string {
	if width <= 0 {
		return ""
	}
	filled := usage.FilledSegments(percent, width)
	var b strings.Builder
	if filled > 0 {
		b.WriteString(filledStyle.Render(strings.Repeat(filledSegment, filled)))
	}
	if rest := width - filled; rest > 0 {
		b.WriteString(st.gauge.Render(strings.Repeat(st.emptySegment, rest)))
	}
	return b.String()
}

// overlayDots replaces the last cells of the first row with the activity and
// health indicators.
func overlayDots(frame string, width int, s viewState, st styles) string {
	lines := strings.Split(frame, "\n")
	dots := " " + st.activityDot(s.working) + " " + st.healthDot(s.health)
	left := truncateRunes(lines[0], width-dotsWidth)
	if pad := width - dotsWidth - lipgloss.Width(left); pad > 0 {
		left += strings.Repeat(" ", pad)
	}
	lines[0] = left + dots
	return strings.Join(lines, "\n")
}

// singleLine replaces control characters so upstream text stays on one row.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxRunes, "")
}

func clipToViewport(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i := range lines {
		lines[i] = truncateRunes(lines[i], width)
		pad := width - lipgloss.Width(lines[i])
		if pad > 0 {
			lines[i] += strings.Repeat(" ", pad)
		}
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

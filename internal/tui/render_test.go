package tui

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/olliecrow/claude_stats/internal/usage"
)

var renderNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Views are asserted as plain text; tests that check colors switch the
// profile locally.
func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func limitAt(util float64, resetIn time.Duration) *usage.Limit {
	l := &usage.Limit{Utilization: &util}
	if resetIn >= 0 {
		ts := renderNow.Add(resetIn).Format(time.RFC3339)
		l.ResetsAt = &ts
	}
	return l
}

func seededState() viewState {
	return viewState{
		snapshot: &usage.Snapshot{
			FiveHour:       limitAt(92.4, 10*time.Minute),
			SevenDay:       limitAt(41, 3*24*time.Hour+2*time.Hour),
			SevenDayOpus:   limitAt(12, 3*24*time.Hour+2*time.Hour),
			SevenDaySonnet: limitAt(73, 3*24*time.Hour+2*time.Hour),
		},
		health:      HealthOk,
		plan:        "Claude Max",
		lastFetchAt: renderNow,
	}
}

func renderLines(s viewState, width, height int, noColor bool) []string {
	return strings.Split(render(s, width, height, renderNow, defaultStyles(noColor)), "\n")
}

func TestRenderFitsViewportExactly(t *testing.T) {
	states := map[string]viewState{
		"gauges":  seededState(),
		"loading": {working: true},
		"error":   {err: strings.Repeat("very long upstream failure ", 10), health: HealthError, lastFetchAt: renderNow},
		"blank":   {},
	}
	for name, s := range states {
		for _, width := range []int{1, 3, 4, 5, 12, 44, 80, 140} {
			for _, height := range []int{1, 2, 5, 12, 19, 40} {
				t.Run(name+"/"+strconv.Itoa(width)+"x"+strconv.Itoa(height), func(t *testing.T) {
					lines := renderLines(s, width, height, false)
					if len(lines) != height {
						t.Fatalf("expected %d lines, got %d", height, len(lines))
					}
					for i, line := range lines {
						if lipgloss.Width(line) != width {
							t.Fatalf("line %d width: got %d want %d", i+1, lipgloss.Width(line), width)
						}
					}
				})
			}
		}
	}
}

func TestRenderZeroSizeIsEmpty(t *testing.T) {
	if out := render(seededState(), 0, 10, renderNow, defaultStyles(false)); out != "" {
		t.Fatalf("expected empty frame, got %q", out)
	}
}

func TestRenderGaugeLayout(t *testing.T) {
	lines := renderLines(seededState(), 44, 24, true)

	if strings.TrimSpace(lines[0]) != "○ ●" {
		t.Fatalf("expected only status dots on the first row, got %q", lines[0])
	}
	if lines[1] != "  Claude Max — usage limits"+strings.Repeat(" ", 44-27) {
		t.Fatalf("unexpected header row %q", lines[1])
	}
	if strings.TrimSpace(lines[2]) != "" {
		t.Fatalf("expected blank row under header, got %q", lines[2])
	}

	want := map[int]string{
		3:  "◔ Current session (92%)",
		5:  "Resets in 10m 00s",
		7:  "◈ All models (41%)",
		9:  "Resets in 3d 2h 00m",
		11: "◆ Opus only (12%)",
		15: "◇ Sonnet only (73%)",
	}
	for row, text := range want {
		if !strings.HasPrefix(lines[row], "  "+text) {
			t.Fatalf("row %d: expected %q, got %q", row, text, lines[row])
		}
	}
	for _, row := range []int{6, 10, 14, 18} {
		if strings.TrimSpace(lines[row]) != "" {
			t.Fatalf("expected blank row %d, got %q", row, lines[row])
		}
	}
}

func TestRenderBarSegments(t *testing.T) {
	lines := renderLines(seededState(), 44, 24, true)
	bar := lines[4]
	if !strings.HasPrefix(bar, "  ") || !strings.HasSuffix(bar, "  ") {
		t.Fatalf("expected bar to keep a two-cell margin: %q", bar)
	}
	// 92% of a 40-cell bar.
	if got := strings.Count(bar, filledSegment); got != 36 {
		t.Fatalf("expected 36 filled segments, got %d", got)
	}
	if got := strings.Count(bar, hollowSegment); got != 4 {
		t.Fatalf("expected 4 empty segments, got %d", got)
	}
}

func TestRenderBarClampsOverLimit(t *testing.T) {
	s := viewState{snapshot: &usage.Snapshot{FiveHour: limitAt(134, 2*time.Hour)}}
	lines := renderLines(s, 24, 10, true)
	if !strings.Contains(lines[3], "(134%)") {
		t.Fatalf("expected the real percentage in the title, got %q", lines[3])
	}
	if strings.Count(lines[4], filledSegment) != 20 || strings.Contains(lines[4], hollowSegment) {
		t.Fatalf("expected a full bar, got %q", lines[4])
	}
}

func TestRenderOnlyPresentSlots(t *testing.T) {
	s := viewState{snapshot: &usage.Snapshot{
		FiveHour:       limitAt(5, time.Hour),
		SevenDaySonnet: limitAt(50, time.Hour),
	}}
	out := render(s, 60, 20, renderNow, defaultStyles(true))
	if strings.Contains(out, "All models") || strings.Contains(out, "Opus only") {
		t.Fatalf("absent slots must not render:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[1], "Plan usage limits") {
		t.Fatalf("expected default header without a plan, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[7], "  ◇ Sonnet only (50%)") {
		t.Fatalf("expected sonnet block right after session block, got %q", lines[7])
	}
}

func TestRenderReservesRowForMissingCountdown(t *testing.T) {
	s := viewState{snapshot: &usage.Snapshot{
		FiveHour:     limitAt(20, -1),
		SevenDay:     &usage.Limit{Utilization: ptr(30.0), ResetsAt: ptr("not a timestamp")},
		SevenDayOpus: limitAt(40, time.Hour),
	}}
	lines := renderLines(s, 50, 20, true)
	if strings.TrimSpace(lines[5]) != "" || strings.TrimSpace(lines[9]) != "" {
		t.Fatalf("expected blank countdown rows, got %q and %q", lines[5], lines[9])
	}
	if !strings.HasPrefix(lines[7], "  ◈ All models (30%)") || !strings.HasPrefix(lines[11], "  ◆ Opus only (40%)") {
		t.Fatalf("expected rows to keep their positions:\n%s", strings.Join(lines, "\n"))
	}
	if !strings.HasPrefix(lines[13], "  Resets in 1h 00m 00s") {
		t.Fatalf("expected opus countdown, got %q", lines[13])
	}
}

func TestRenderLoadingErrorAndBlank(t *testing.T) {
	lines := renderLines(viewState{working: true}, 40, 3, true)
	if !strings.HasPrefix(lines[0], loadingText) {
		t.Fatalf("expected loading text, got %q", lines[0])
	}

	lines = renderLines(viewState{err: "boom", health: HealthError}, 40, 3, true)
	if !strings.HasPrefix(lines[0], "Error: boom") {
		t.Fatalf("expected error text, got %q", lines[0])
	}

	lines = renderLines(viewState{}, 40, 3, true)
	for i, line := range lines {
		if i == 0 {
			line = strings.TrimSuffix(line, " ○ ○")
		}
		if strings.TrimSpace(line) != "" {
			t.Fatalf("expected blank frame, row %d = %q", i, line)
		}
	}
}

func TestRenderKeepsGaugesWhileWorkingOrFailing(t *testing.T) {
	s := seededState()
	s.working = true
	s.err = "API returned 503 Service Unavailable: down"
	s.health = HealthError
	out := render(s, 60, 24, renderNow, defaultStyles(true))
	if strings.Contains(out, "Error:") || strings.Contains(out, loadingText) {
		t.Fatalf("stale gauges must win over loading and error text:\n%s", out)
	}
	if !strings.Contains(out, "Current session (92%)") {
		t.Fatalf("expected stale gauges")
	}
}

func TestRenderDotsNeedFourColumns(t *testing.T) {
	if lines := renderLines(viewState{}, 3, 1, true); lines[0] != "   " {
		t.Fatalf("expected no dots below four columns, got %q", lines[0])
	}
	if lines := renderLines(viewState{}, 4, 1, true); lines[0] != " ○ ○" {
		t.Fatalf("expected dots at four columns, got %q", lines[0])
	}
}

func TestRenderColors(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	s := viewState{
		snapshot: &usage.Snapshot{FiveHour: limitAt(100, 2*time.Hour), SevenDay: limitAt(71, time.Hour)},
		working:  true,
		health:   HealthSlow,
	}
	out := render(s, 40, 12, renderNow, defaultStyles(false))
	checks := map[string]string{
		"activity accent":  "38;5;81m" + statusDot,
		"health slow":      "38;5;214m" + statusDot,
		"over-limit reset": "38;5;196mResets in 2h 00m 00s",
		"warning title":    "38;5;214m (71%)",
		"gauge background": "38;5;238m" + filledSegment,
	}
	for name, seq := range checks {
		if !strings.Contains(out, seq) {
			t.Fatalf("%s: expected %q in output", name, seq)
		}
	}

	s.working = false
	s.health = HealthError
	out = render(s, 40, 12, renderNow, defaultStyles(false))
	if !strings.Contains(out, "38;5;245m"+statusDot) || !strings.Contains(out, "38;5;196m"+statusDot) {
		t.Fatalf("expected dim activity and red health dots")
	}
}

func TestRenderPlainDotsShowState(t *testing.T) {
	cases := []struct {
		working bool
		health  Health
		want    string
	}{
		{false, HealthUnknown, " ○ ○"},
		{true, HealthUnknown, " ● ○"},
		{false, HealthOk, " ○ ●"},
		{false, HealthSlow, " ○ ◐"},
		{true, HealthError, " ● ✗"},
	}
	for _, tc := range cases {
		lines := renderLines(viewState{working: tc.working, health: tc.health}, 4, 1, true)
		if lines[0] != tc.want {
			t.Fatalf("working=%v health=%s: expected %q, got %q", tc.working, tc.health, tc.want, lines[0])
		}
	}
}

func TestRenderErrorStaysOnOneRow(t *testing.T) {
	s := viewState{err: "API returned 502 Bad Gateway: <html>\r\n<body>bad\tgateway</body>\n</html>", health: HealthError}
	lines := renderLines(s, 120, 4, true)
	if !strings.HasPrefix(lines[0], "Error: API returned 502 Bad Gateway: <html>  <body>bad gateway</body> </html>") {
		t.Fatalf("expected error flattened onto the first row, got %q", lines[0])
	}
	for i, line := range lines {
		if strings.ContainsAny(line, "\r\t") {
			t.Fatalf("row %d kept a control character: %q", i, line)
		}
		if i > 0 && strings.TrimSpace(line) != "" {
			t.Fatalf("error spilled into row %d: %q", i, line)
		}
	}
}

func ptr[T any](v T) *T { return &v }

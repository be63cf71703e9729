package usage

import (
	"fmt"
	"math"
	"time"
)

// Tier is the color class of a rendered value.
type Tier int

const (
	TierNeutral Tier = iota
	TierDim
	TierWarning
	TierAlert
)

const (
	warningPercent = 70
	alertPercent   = 85
	// Past the limit, a reset further away than this is an alert.
	overLimitAlertSecs = 1800
)

// Percent rounds utilization to the nearest integer. Values above 100 are
// kept as reported.
func (l *Limit) Percent() int {
	if l == nil || l.Utilization == nil {
		return 0
	}
	return int(math.Round(*l.Utilization))
}

// RemainingSeconds returns the whole seconds until the window resets. The
// second result is false when there is no reset time or it does not parse.
// A reset in the past reads as zero.
func (l *Limit) RemainingSeconds(now time.Time) (int64, bool) {
	if l == nil || l.ResetsAt == nil {
		return 0, false
	}
	reset, err := time.Parse(time.RFC3339, *l.ResetsAt)
	if err != nil {
		return 0, false
	}
	secs := int64(reset.Sub(now) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// RemainingLabel formats RemainingSeconds, or returns "" when unavailable.
func (l *Limit) RemainingLabel(now time.Time) string {
	secs, ok := l.RemainingSeconds(now)
	if !ok {
		return ""
	}
	return FormatRemaining(secs)
}

// FormatRemaining renders a countdown. Sub-units are padded to two digits;
// the leading unit never is. Seconds are dropped once days are shown.
func FormatRemaining(secs int64) string {
	switch {
	case secs <= 0:
		return "now"
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %02ds", secs/60, secs%60)
	case secs < 86400:
		return fmt.Sprintf("%dh %02dm %02ds", secs/3600, (secs%3600)/60, secs%60)
	default:
		return fmt.Sprintf("%dd %dh %02dm", secs/86400, (secs%86400)/3600, (secs%3600)/60)
	}
}

// PercentTier classifies a displayed percentage.
func PercentTier(percent int) Tier {
	switch {
	case percent >= alertPercent:
		return TierAlert
	case percent >= warningPercent:
		return TierWarning
	default:
		return TierNeutral
	}
}

// ResetTier classifies a reset countdown. Only an exhausted window draws
// attention to its reset time.
func ResetTier(percent int, remainingSecs int64) Tier {
	if percent < 100 {
		return TierDim
	}
	if remainingSecs > overLimitAlertSecs {
		return TierAlert
	}
	return TierWarning
}

// FilledSegments returns how many of width bar segments are filled for
// percent. The fill is clamped to [0, 100] even when the label is not.
func FilledSegments(percent, width int) int {
	if width <= 0 {
		return 0
	}
	percent = max(0, min(percent, 100))
	return percent * width / 100
}

package tui

import (
	"time"

	"github.com/olliecrow/claude_stats/internal/poller"
	"github.com/olliecrow/claude_stats/internal/usage"
)

// Health classifies the most recent completed fetch.
type Health int

const (
	// HealthUnknown means no fetch has completed yet.
	HealthUnknown Health = iota
	HealthOk
	HealthSlow
	HealthError
)

func (h Health) String() string {
	switch h {
	case HealthOk:
		return "ok"
	case HealthSlow:
		return "slow"
	case HealthError:
		return "error"
	default:
		return "none"
	}
}

// viewState is everything the renderer reads. Only the loop goroutine
// mutates it.
type viewState struct {
	snapshot *usage.Snapshot
	err      string
	health   Health
	working  bool
	plan     string

	// Zero until the first result has been applied.
	lastFetchAt time.Time
}

// apply folds a completed fetch into the state. A failed fetch keeps the
// previous snapshot on screen.
func (s *viewState) apply(res poller.Result, now time.Time, slowThreshold time.Duration) {
	if res.Plan != "" {
		s.plan = res.Plan
	}
	if res.Err != nil {
		s.err = res.Err.Error()
		s.health = HealthError
	} else {
		s.snapshot = res.Snapshot
		s.err = ""
		if res.Elapsed > slowThreshold {
			s.health = HealthSlow
		} else {
			s.health = HealthOk
		}
	}
	s.working = false
	s.lastFetchAt = now
}

func (s viewState) refreshDue(now time.Time, interval time.Duration) bool {
	if s.working || s.lastFetchAt.IsZero() {
		return false
	}
	return now.Sub(s.lastFetchAt) >= interval
}

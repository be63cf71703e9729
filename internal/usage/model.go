package usage

import "github.com/samber/lo"

// Snapshot is one complete response from the usage endpoint. Each window is
// independently optional; a nil window is never rendered.
type Snapshot struct {
	FiveHour       *Limit `json:"five_hour"`
	SevenDay       *Limit `json:"seven_day"`
	SevenDayOpus   *Limit `json:"seven_day_opus"`
	SevenDaySonnet *Limit `json:"seven_day_sonnet"`
}

// Limit is a single usage window as reported by the endpoint.
type Limit struct {
	Utilization *float64 `json:"utilization"`
	ResetsAt    *string  `json:"resets_at"`
}

// Slot names one of the four usage windows. The declaration order is the
// canonical display order.
type Slot int

const (
	SlotSession Slot = iota
	SlotAllModels
	SlotOpus
	SlotSonnet
)

// AllSlots lists every slot in display order.
var AllSlots = []Slot{SlotSession, SlotAllModels, SlotOpus, SlotSonnet}

func (s Slot) Label() string {
	switch s {
	case SlotSession:
		return "◔ Current session"
	case SlotAllModels:
		return "◈ All models"
	case SlotOpus:
		return "◆ Opus only"
	case SlotSonnet:
		return "◇ Sonnet only"
	default:
		return "unknown"
	}
}

// ShowsCountdown reports whether the slot renders a reset countdown row.
func (s Slot) ShowsCountdown() bool {
	return true
}

// Limit returns the window for slot, or nil when the snapshot omits it.
func (s *Snapshot) Limit(slot Slot) *Limit {
	if s == nil {
		return nil
	}
	switch slot {
	case SlotSession:
		return s.FiveHour
	case SlotAllModels:
		return s.SevenDay
	case SlotOpus:
		return s.SevenDayOpus
	case SlotSonnet:
		return s.SevenDaySonnet
	default:
		return nil
	}
}

// Present returns the slots carried by the snapshot in display order.
func (s *Snapshot) Present() []Slot {
	return lo.Filter(AllSlots, func(slot Slot, _ int) bool {
		return s.Limit(slot) != nil
	})
}

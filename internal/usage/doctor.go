package usage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details"`
}

type DoctorReport struct {
	Checks []DoctorCheck `json:"checks"`
}

// RunDoctor checks the credentials file and performs one live fetch. The
// fetch is skipped when no token could be read.
func RunDoctor(ctx context.Context, creds *FileCredentials, source Source, timeout time.Duration) DoctorReport {
	var checks []DoctorCheck

	credCheck, loaded := checkCredentials(creds)
	checks = append(checks, credCheck)
	if credCheck.OK {
		checks = append(checks, checkSourceFetch(ctx, source, loaded.Token, timeout))
	} else {
		checks = append(checks, DoctorCheck{
			Name:    source.Name() + " fetch",
			OK:      false,
			Details: "skipped: no usable token",
		})
	}
	return DoctorReport{Checks: checks}
}

func (r DoctorReport) Healthy() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

func checkCredentials(creds *FileCredentials) (DoctorCheck, Credentials) {
	loaded, err := creds.Load()
	if err != nil {
		return DoctorCheck{
			Name:    "credentials file",
			OK:      false,
			Details: fmt.Sprintf("%s: %v", creds.Path(), err),
		}, Credentials{}
	}
	plan := loaded.Plan
	if plan == "" {
		plan = "unknown plan"
	}
	return DoctorCheck{
		Name:    "credentials file",
		OK:      true,
		Details: fmt.Sprintf("found %s with access token (%s)", creds.Path(), plan),
	}, loaded
}

func checkSourceFetch(parent context.Context, source Source, token string, timeout time.Duration) DoctorCheck {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := source.Fetch(ctx, token)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		return DoctorCheck{
			Name:    source.Name() + " fetch",
			OK:      false,
			Details: err.Error(),
		}
	}

	now := time.Now()
	parts := make([]string, 0, len(AllSlots))
	for _, slot := range snapshot.Present() {
		limit := snapshot.Limit(slot)
		part := fmt.Sprintf("%s=%d%%", slotKey(slot), limit.Percent())
		if label := limit.RemainingLabel(now); label != "" {
			part += " (resets in " + label + ")"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		parts = append(parts, "no usage windows reported")
	}
	return DoctorCheck{
		Name:    source.Name() + " fetch",
		OK:      true,
		Details: fmt.Sprintf("%s in %s", strings.Join(parts, " "), elapsed),
	}
}

func slotKey(slot Slot) string {
	switch slot {
	case SlotSession:
		return "5h"
	case SlotAllModels:
		return "7d"
	case SlotOpus:
		return "7d-opus"
	case SlotSonnet:
		return "7d-sonnet"
	default:
		return "?"
	}
}

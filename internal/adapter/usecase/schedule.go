package usecase

import (
	"time"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// Slot is a campaign paired with the concrete launch window computed from
// one of its schedule rows for today.
type Slot struct {
	Campaign    domain.Campaign
	WindowStart time.Time
	WindowEnd   time.Time
}

// ScheduleEvaluator decides which scheduled campaigns are inside an active
// weekly window at a given instant.
type ScheduleEvaluator struct{}

// ActiveSlots filters candidates down to those whose schedule row contains
// now and resolves the row into today's concrete [start, end) window. Each
// call re-evaluates against the clock it is given. Overlap between rows is
// rejected at validation time, not here; if a campaign still matches twice
// both slots are returned and the launcher's live-overlap check prevents a
// double launch.
func (ScheduleEvaluator) ActiveSlots(now time.Time, candidates []port.ScheduledCandidate) []Slot {
	var slots []Slot
	for _, c := range candidates {
		if !c.Schedule.Contains(now) {
			continue
		}
		start, end := c.Schedule.Window(now)
		slots = append(slots, Slot{Campaign: c.Campaign, WindowStart: start, WindowEnd: end})
	}
	return slots
}

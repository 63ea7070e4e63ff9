package usecase

import (
	"context"
	"sort"
	"time"

	"adpilot/internal/core/port"
)

// Admission gates unscheduled campaigns against the shared pool of
// concurrent launch slots. Scheduled campaigns bypass it, their window was
// reserved in advance.
type Admission struct {
	refs port.ReferenceRepository
	max  int
}

func NewAdmission(refs port.ReferenceRepository, maxConcurrent int) *Admission {
	return &Admission{refs: refs, max: maxConcurrent}
}

// Admit returns the subsequence of candidates that fit in the remaining
// pool capacity at now. Candidates with fewer prior launches go first,
// ties break by campaign id ascending so the order is deterministic. The
// repository already orders its listing this way; sorting again keeps the
// component correct for any caller.
func (a *Admission) Admit(ctx context.Context, candidates []port.UnscheduledCandidate, now time.Time) ([]port.UnscheduledCandidate, error) {
	live, err := a.refs.LiveCount(ctx, now)
	if err != nil {
		return nil, err
	}
	capacity := a.max - live
	if capacity <= 0 {
		return nil, nil
	}

	sorted := make([]port.UnscheduledCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PriorRuns != sorted[j].PriorRuns {
			return sorted[i].PriorRuns < sorted[j].PriorRuns
		}
		return sorted[i].Campaign.ID < sorted[j].Campaign.ID
	})

	if len(sorted) > capacity {
		sorted = sorted[:capacity]
	}
	return sorted, nil
}

package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// tickLockName is the cross-process guard name for the scheduling tick.
// Overlapping ticks would double-count the live pool and could double
// launch a campaign, so a second invocation exits instead of waiting.
const tickLockName = "adpilot:campaign-tick"

// Scheduler coordinates one scheduling tick: scheduled campaigns inside an
// active weekly window launch first with their own window, then
// unscheduled campaigns compete for the remaining pool capacity with a
// default window.
type Scheduler struct {
	campaigns     port.CampaignRepository
	evaluator     ScheduleEvaluator
	admission     *Admission
	launchers     map[domain.Medium]*Launcher
	guard         port.TickGuard
	logger        *slog.Logger
	maxConcurrent int
	defaultWindow time.Duration
}

func NewScheduler(
	campaigns port.CampaignRepository,
	admission *Admission,
	launchers map[domain.Medium]*Launcher,
	guard port.TickGuard,
	maxConcurrent int,
	defaultWindow time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		campaigns:     campaigns,
		admission:     admission,
		launchers:     launchers,
		guard:         guard,
		logger:        logger,
		maxConcurrent: maxConcurrent,
		defaultWindow: defaultWindow,
	}
}

// RunTick executes one scheduling pass at now. A failed launch is logged
// and the tick moves on to the next candidate; error bookkeeping happens
// inside the launcher. When another tick instance still holds the guard
// the pass is skipped entirely.
func (s *Scheduler) RunTick(ctx context.Context, now time.Time) error {
	release, ok, err := s.guard.TryLock(ctx, tickLockName)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("tick skipped, previous tick still running")
		return nil
	}
	defer release()

	logger := s.logger.With(slog.String("tick", uuid.NewString()))

	for medium, launcher := range s.launchers {
		scheduled, err := s.campaigns.ListScheduledCandidates(ctx, medium, now.Weekday())
		if err != nil {
			logger.Error("list scheduled candidates", slog.String("medium", string(medium)), slog.Any("error", err))
			continue
		}
		for _, slot := range s.evaluator.ActiveSlots(now, scheduled) {
			c := slot.Campaign
			if _, err := launcher.Launch(ctx, &c, slot.WindowStart, slot.WindowEnd, now, 0); err != nil {
				logger.Error("scheduled launch failed",
					slog.Int64("campaign", c.ID),
					slog.String("medium", string(medium)),
					slog.Any("error", err))
			}
		}

		pool, err := s.campaigns.ListUnscheduledCandidates(ctx, medium)
		if err != nil {
			logger.Error("list unscheduled candidates", slog.String("medium", string(medium)), slog.Any("error", err))
			continue
		}
		admitted, err := s.admission.Admit(ctx, pool, now)
		if err != nil {
			logger.Error("admission", slog.String("medium", string(medium)), slog.Any("error", err))
			continue
		}
		for _, cand := range admitted {
			c := cand.Campaign
			if _, err := launcher.Launch(ctx, &c, now, now.Add(s.defaultWindow), now, s.maxConcurrent); err != nil {
				logger.Error("pool launch failed",
					slog.Int64("campaign", c.ID),
					slog.String("medium", string(medium)),
					slog.Any("error", err))
			}
		}
	}
	return nil
}

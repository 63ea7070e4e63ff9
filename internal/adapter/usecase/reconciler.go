package usecase

import (
	"context"
	"log/slog"
	"time"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// reportLockName guards the reconciliation pass the same way the
// scheduling tick is guarded.
const reportLockName = "adpilot:report-tick"

// Reconciler pulls remote view reports for live and recently finished
// references and merges them back into local state.
type Reconciler struct {
	campaigns port.CampaignRepository
	refs      port.ReferenceRepository
	adapters  map[domain.Medium]port.MediumAdapter
	guard     port.TickGuard
	logger    *slog.Logger
}

func NewReconciler(
	campaigns port.CampaignRepository,
	refs port.ReferenceRepository,
	adapters map[domain.Medium]port.MediumAdapter,
	guard port.TickGuard,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{campaigns: campaigns, refs: refs, adapters: adapters, guard: guard, logger: logger}
}

// Reconcile runs one reporting pass over every reportable reference at
// now. Per-reference failures are logged and the pass continues.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time) error {
	release, ok, err := r.guard.TryLock(ctx, reportLockName)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Info("report pass skipped, previous pass still running")
		return nil
	}
	defer release()

	refs, err := r.refs.ListReportable(ctx)
	if err != nil {
		return err
	}
	for i := range refs {
		if err := r.reconcileOne(ctx, &refs[i], now); err != nil {
			r.logger.Error("reconcile reference",
				slog.Int64("reference", refs[i].ID),
				slog.Int64("campaign", refs[i].CampaignID),
				slog.Any("error", err))
		}
	}
	return nil
}

// ReconcileByIDs runs the same per-reference logic for an explicit id set,
// the manual re-sync path. References that never went live are skipped.
func (r *Reconciler) ReconcileByIDs(ctx context.Context, ids []int64, now time.Time) error {
	refs, err := r.refs.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range refs {
		if refs[i].RefID == nil {
			continue
		}
		if err := r.reconcileOne(ctx, &refs[i], now); err != nil {
			r.logger.Error("reconcile reference",
				slog.Int64("reference", refs[i].ID),
				slog.Any("error", err))
		}
	}
	return nil
}

// reconcileOne merges one remote report into the reference. Views and
// detail are overwritten from the remote payload; hourly data, when
// present, is rebucketed into the cumulative and per-hour delta series
// over the reference window. The reference is persisted even when only
// part of the payload could be used. Once now is past the window and the
// window's final hour shows up in the remote data the report time is set,
// which retires the reference from future passes; the remote platform
// reports with a lag, so an elapsed window alone is not enough.
func (r *Reconciler) reconcileOne(ctx context.Context, ref *domain.Reference, now time.Time) error {
	campaign, err := r.campaigns.GetCampaign(ctx, ref.CampaignID)
	if err != nil {
		return err
	}
	adapter, ok := r.adapters[campaign.Medium]
	if !ok {
		r.logger.Warn("no adapter for medium",
			slog.String("medium", string(campaign.Medium)),
			slog.Int64("reference", ref.ID))
		return nil
	}

	reports, err := adapter.CampaignReport(ctx, *ref.RefID)
	if err != nil {
		return err
	}

	hours := windowHours(ref.ScheduleStart, ref.ScheduleEnd)
	finalHour := finalWindowHour(ref.ScheduleEnd)
	finalSeen := false
	for _, report := range reports {
		entry := ref.Contents.Find(report.ContentRefID)
		if entry == nil {
			r.logger.Warn("report for unknown content",
				slog.Int64("reference", ref.ID),
				slog.String("content_ref", report.ContentRefID))
			continue
		}
		entry.Views = report.Views
		entry.Detail = report.Detail
		if len(report.Hourly) == 0 {
			continue
		}
		hourly := normalizeHourly(report.Hourly)
		entry.GraphHourlyCumulative = cumulativeSeries(hours, hourly)
		entry.GraphHourlyView = deltaSeries(entry.GraphHourlyCumulative)
		if _, ok := hourly[finalHour]; ok {
			finalSeen = true
		}
	}

	if ref.ReportTime == nil && finalSeen && now.After(ref.ScheduleEnd) {
		ref.ReportTime = &now
	}
	return r.refs.Update(ctx, ref)
}

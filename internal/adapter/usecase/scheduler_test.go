package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adpilot/internal/core/domain"
)

func newTestScheduler(campaigns *fakeCampaignRepo, refs *fakeRefRepo, adapter *fakeAdapter, guard *fakeGuard, maxConcurrent int) *Scheduler {
	logger := testLogger()
	launchers := map[domain.Medium]*Launcher{
		adapter.medium: NewLauncher(adapter, campaigns, refs, &fakeFiles{}, logger),
	}
	return NewScheduler(campaigns, NewAdmission(refs, maxConcurrent), launchers, guard, maxConcurrent, 18*time.Hour, logger)
}

// Scenario: an unscheduled campaign, five slots, three already taken by
// other campaigns. The tick admits it and the reference ends up live.
func TestTickAdmitsUnscheduledCampaignWithFreeCapacity(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(7), cpvContent(70, 7))
	refs := &fakeRefRepo{}
	for i := int64(1); i <= 3; i++ {
		refs.addLive(100+i, "other", now.Add(-time.Hour), now.Add(time.Hour))
	}
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 5)
	require.NoError(t, s.RunTick(context.Background(), now))

	ref := refs.byCampaign(7)
	require.NotNil(t, ref)
	require.NotNil(t, ref.RefID)
	require.Equal(t, now, ref.ScheduleStart)
	require.Equal(t, now.Add(18*time.Hour), ref.ScheduleEnd)

	live, _ := refs.LiveCount(context.Background(), now)
	require.LessOrEqual(t, live, 5)
}

// Scenario: a remote failure for one campaign leaves its audit row behind,
// bumps its error count, and does not stop the other candidate.
func TestTickIsolatesRemoteFailures(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(1), cpvContent(10, 1))
	campaigns.add(approvedCampaign(2), cpvContent(20, 2))
	refs := &fakeRefRepo{}
	adapter := newFakeAdapter(domain.MediumTelegram)
	adapter.failOp = "create_content" // fails every content creation

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 5)
	require.NoError(t, s.RunTick(context.Background(), now))

	for _, id := range []int64{1, 2} {
		c, _ := campaigns.GetCampaign(context.Background(), id)
		require.Equal(t, 1, c.ErrorCount, "campaign %d", id)
		ref := refs.byCampaign(id)
		require.NotNil(t, ref, "campaign %d keeps its audit row", id)
		require.Nil(t, ref.RefID)
	}
}

// Scenario: a campaign already live at now is not launched again even
// though it also qualifies as an unscheduled candidate.
func TestTickNeverDoubleLaunchesLiveCampaign(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(1), cpvContent(10, 1))
	refs := &fakeRefRepo{}
	refs.addLive(1, "already", now.Add(-2*time.Hour), now.Add(2*time.Hour))
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 5)
	require.NoError(t, s.RunTick(context.Background(), now))

	require.Empty(t, adapter.created)
	all, _ := refs.ListByCampaign(context.Background(), 1)
	require.Len(t, all, 1)
}

func TestTickLaunchesActiveScheduleSlot(t *testing.T) {
	now := time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC) // Monday 19:30
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(1), cpvContent(10, 1))
	campaigns.schedules[1] = []domain.Schedule{{
		ID: 1, CampaignID: 1, Weekday: time.Monday,
		StartTime: domain.TimeOfDay(18 * 60), EndTime: domain.TimeOfDay(22 * 60),
	}}
	refs := &fakeRefRepo{}
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 1)
	require.NoError(t, s.RunTick(context.Background(), now))

	ref := refs.byCampaign(1)
	require.NotNil(t, ref)
	require.Equal(t, time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC), ref.ScheduleStart)
	require.Equal(t, time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC), ref.ScheduleEnd)
}

// Scheduled campaigns bypass the pool cap; their window was reserved in
// advance.
func TestTickScheduledBypassesPoolCap(t *testing.T) {
	now := time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(1), cpvContent(10, 1))
	campaigns.schedules[1] = []domain.Schedule{{
		ID: 1, CampaignID: 1, Weekday: time.Monday,
		StartTime: domain.TimeOfDay(18 * 60), EndTime: domain.TimeOfDay(22 * 60),
	}}
	refs := &fakeRefRepo{}
	refs.addLive(50, "other", now.Add(-time.Hour), now.Add(time.Hour))
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 1)
	require.NoError(t, s.RunTick(context.Background(), now))
	require.NotNil(t, refs.byCampaign(1))
}

func TestTickSkipsWhenGuardHeld(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	campaigns.add(approvedCampaign(1), cpvContent(10, 1))
	refs := &fakeRefRepo{}
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{held: true}, 5)
	require.NoError(t, s.RunTick(context.Background(), now))
	require.Empty(t, adapter.created)
	require.Empty(t, refs.refs)
}

func TestTickExcludesCircuitBrokenCampaigns(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	broken := approvedCampaign(1)
	broken.ErrorCount = domain.ErrorThreshold
	campaigns.add(broken, cpvContent(10, 1))
	refs := &fakeRefRepo{}
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 5)
	require.NoError(t, s.RunTick(context.Background(), now))
	require.Empty(t, adapter.created)
}

// The pool never exceeds capacity even with more candidates than slots,
// and admission picks the fewest-launched candidates first.
func TestTickRespectsCapacityAndFairness(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	campaigns := newFakeCampaignRepo()
	for id := int64(1); id <= 4; id++ {
		campaigns.add(approvedCampaign(id), cpvContent(id*10, id))
	}
	campaigns.priorRuns[1] = 3
	campaigns.priorRuns[2] = 0
	campaigns.priorRuns[3] = 0
	campaigns.priorRuns[4] = 1
	refs := &fakeRefRepo{}
	adapter := newFakeAdapter(domain.MediumTelegram)

	s := newTestScheduler(campaigns, refs, adapter, &fakeGuard{}, 2)
	require.NoError(t, s.RunTick(context.Background(), now))

	live, _ := refs.LiveCount(context.Background(), now)
	require.Equal(t, 2, live)
	require.NotNil(t, refs.byCampaign(2), "fewest prior launches, lowest id")
	require.NotNil(t, refs.byCampaign(3))
	require.Nil(t, refs.byCampaign(1))
	require.Nil(t, refs.byCampaign(4))
}

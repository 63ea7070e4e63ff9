package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// In-memory fakes for the usecase tests. They implement the ports with
// just enough behavior to exercise the control flow, including the
// reservation semantics of the reference repository.

type fakeCampaignRepo struct {
	campaigns map[int64]*domain.Campaign
	contents  map[int64][]domain.Content
	schedules map[int64][]domain.Schedule
	priorRuns map[int64]int
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns: make(map[int64]*domain.Campaign),
		contents:  make(map[int64][]domain.Content),
		schedules: make(map[int64][]domain.Schedule),
		priorRuns: make(map[int64]int),
	}
}

func (f *fakeCampaignRepo) add(c domain.Campaign, contents ...domain.Content) *domain.Campaign {
	stored := c
	f.campaigns[c.ID] = &stored
	f.contents[c.ID] = contents
	returned := c
	return &returned
}

func (f *fakeCampaignRepo) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCampaignRepo) ListContents(_ context.Context, campaignID int64) ([]domain.Content, error) {
	return f.contents[campaignID], nil
}

func (f *fakeCampaignRepo) ListScheduledCandidates(_ context.Context, medium domain.Medium, weekday time.Weekday) ([]port.ScheduledCandidate, error) {
	var out []port.ScheduledCandidate
	for _, id := range f.sortedIDs() {
		c := f.campaigns[id]
		if c.Medium != medium || !c.Launchable() {
			continue
		}
		for _, s := range f.schedules[id] {
			if s.Weekday == weekday {
				out = append(out, port.ScheduledCandidate{Campaign: *c, Schedule: s})
			}
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) ListUnscheduledCandidates(_ context.Context, medium domain.Medium) ([]port.UnscheduledCandidate, error) {
	var out []port.UnscheduledCandidate
	for _, id := range f.sortedIDs() {
		c := f.campaigns[id]
		if c.Medium != medium || !c.Launchable() || len(f.schedules[id]) > 0 {
			continue
		}
		out = append(out, port.UnscheduledCandidate{Campaign: *c, PriorRuns: f.priorRuns[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorRuns != out[j].PriorRuns {
			return out[i].PriorRuns < out[j].PriorRuns
		}
		return out[i].Campaign.ID < out[j].Campaign.ID
	})
	return out, nil
}

func (f *fakeCampaignRepo) IncrementErrorCount(_ context.Context, campaignID int64) error {
	c, ok := f.campaigns[campaignID]
	if !ok {
		return port.ErrNotFound
	}
	c.ErrorCount++
	return nil
}

func (f *fakeCampaignRepo) ResetErrorCount(_ context.Context, campaignID int64) error {
	c, ok := f.campaigns[campaignID]
	if !ok {
		return port.ErrNotFound
	}
	c.ErrorCount = 0
	return nil
}

func (f *fakeCampaignRepo) SetStatus(_ context.Context, campaignID int64, status domain.CampaignStatus, finishBalance int64) error {
	c, ok := f.campaigns[campaignID]
	if !ok {
		return port.ErrNotFound
	}
	c.Status = status
	c.FinishBalance = finishBalance
	return nil
}

func (f *fakeCampaignRepo) ReplaceSchedules(_ context.Context, campaignID int64, rows []domain.Schedule) error {
	f.schedules[campaignID] = rows
	return nil
}

func (f *fakeCampaignRepo) sortedIDs() []int64 {
	ids := make([]int64, 0, len(f.campaigns))
	for id := range f.campaigns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeRefRepo struct {
	nextID  int64
	refs    []*domain.Reference
	updates int
}

func (f *fakeRefRepo) addLive(campaignID int64, refID string, start, end time.Time) *domain.Reference {
	f.nextID++
	ref := &domain.Reference{
		ID:            f.nextID,
		CampaignID:    campaignID,
		RefID:         &refID,
		ScheduleStart: start,
		ScheduleEnd:   end,
	}
	f.refs = append(f.refs, ref)
	return ref
}

func (f *fakeRefRepo) Reserve(_ context.Context, ref *domain.Reference, now time.Time, maxLive int) (*domain.Reference, error) {
	if maxLive > 0 {
		live := 0
		for _, r := range f.refs {
			if r.Live(now) {
				live++
			}
		}
		if live >= maxLive {
			return nil, nil
		}
	}
	for _, r := range f.refs {
		if r.CampaignID == ref.CampaignID && r.Live(now) {
			return nil, nil
		}
	}
	f.nextID++
	ref.ID = f.nextID
	f.refs = append(f.refs, ref)
	return ref, nil
}

func (f *fakeRefRepo) Update(_ context.Context, ref *domain.Reference) error {
	f.updates++
	for _, r := range f.refs {
		if r.ID == ref.ID {
			*r = *ref
			return nil
		}
	}
	f.refs = append(f.refs, ref)
	return nil
}

func (f *fakeRefRepo) HasLiveOverlap(_ context.Context, campaignID int64, at time.Time) (bool, error) {
	for _, r := range f.refs {
		if r.CampaignID == campaignID && r.Live(at) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRefRepo) LiveCount(_ context.Context, at time.Time) (int, error) {
	n := 0
	for _, r := range f.refs {
		if r.Live(at) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRefRepo) ListReportable(_ context.Context) ([]domain.Reference, error) {
	var out []domain.Reference
	for _, r := range f.refs {
		if r.Reportable() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRefRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Reference, error) {
	var out []domain.Reference
	for _, r := range f.refs {
		for _, id := range ids {
			if r.ID == id {
				out = append(out, *r)
			}
		}
	}
	return out, nil
}

func (f *fakeRefRepo) ListByCampaign(_ context.Context, campaignID int64) ([]domain.Reference, error) {
	var out []domain.Reference
	for _, r := range f.refs {
		if r.CampaignID == campaignID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRefRepo) byCampaign(campaignID int64) *domain.Reference {
	for _, r := range f.refs {
		if r.CampaignID == campaignID {
			return r
		}
	}
	return nil
}

// fakeAdapter records remote calls and can be told to fail a single
// operation with an HTTP-500 shaped error.
type fakeAdapter struct {
	medium  domain.Medium
	failOp  string
	nextID  int
	created []string
	enabled []string
	files   int
	reports map[string][]port.ContentReport
}

func newFakeAdapter(m domain.Medium) *fakeAdapter {
	return &fakeAdapter{medium: m, reports: make(map[string][]port.ContentReport)}
}

func (f *fakeAdapter) fail(op string) error {
	if f.failOp == op {
		return &port.RequestError{Medium: f.medium, Op: op, StatusCode: 500, Body: "remote boom"}
	}
	return nil
}

func (f *fakeAdapter) Medium() domain.Medium { return f.medium }

func (f *fakeAdapter) CreateCampaign(_ context.Context, _ *domain.Campaign, _, _ time.Time) (string, error) {
	if err := f.fail("create_campaign"); err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("rc-%d", f.nextID)
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeAdapter) CreateContent(_ context.Context, content *domain.Content, remoteCampaignID string) (string, error) {
	if err := f.fail("create_content"); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-content-%d", remoteCampaignID, content.ID), nil
}

func (f *fakeAdapter) CreateFile(_ context.Context, _ port.File, _, _ string) error {
	if err := f.fail("create_file"); err != nil {
		return err
	}
	f.files++
	return nil
}

func (f *fakeAdapter) EnableCampaign(_ context.Context, remoteCampaignID string) error {
	if err := f.fail("enable_campaign"); err != nil {
		return err
	}
	f.enabled = append(f.enabled, remoteCampaignID)
	return nil
}

func (f *fakeAdapter) CampaignReport(_ context.Context, remoteCampaignID string) ([]port.ContentReport, error) {
	if err := f.fail("campaign_report"); err != nil {
		return nil, err
	}
	return f.reports[remoteCampaignID], nil
}

func (f *fakeAdapter) GetCampaign(_ context.Context, remoteCampaignID string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"` + remoteCampaignID + `"}`), nil
}

type fakeFiles struct {
	store map[string]port.File
}

func (f *fakeFiles) Resolve(_ context.Context, fileID string) (*port.File, error) {
	file, ok := f.store[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return &file, nil
}

type fakeGuard struct {
	held     bool
	acquired int
}

func (f *fakeGuard) TryLock(context.Context, string) (func(), bool, error) {
	if f.held {
		return nil, false, nil
	}
	f.acquired++
	return func() {}, true, nil
}

type fakeBilling struct {
	balances map[int64]int64
	debits   []int64
	refunds  []int64
}

func (f *fakeBilling) Balance(_ context.Context, ownerID int64) (int64, error) {
	return f.balances[ownerID], nil
}

func (f *fakeBilling) Debit(_ context.Context, _, amount, _ int64) error {
	f.debits = append(f.debits, amount)
	return nil
}

func (f *fakeBilling) Refund(_ context.Context, _, amount, _ int64) error {
	f.refunds = append(f.refunds, amount)
	return nil
}

package port

import (
	"context"
	"errors"
	"time"

	"adpilot/internal/core/domain"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ScheduledCandidate pairs a launchable campaign with one of its schedule
// rows matching the current weekday.
type ScheduledCandidate struct {
	Campaign domain.Campaign
	Schedule domain.Schedule
}

// UnscheduledCandidate is a launchable campaign without schedule rows,
// annotated with its total historical reference count for fair admission.
type UnscheduledCandidate struct {
	Campaign  domain.Campaign
	PriorRuns int
}

// CampaignRepository is the persistence port for campaigns, contents and
// schedules.
type CampaignRepository interface {
	// GetCampaign returns a campaign by id, ErrNotFound when absent.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)

	// ListContents returns a campaign's contents in id order.
	ListContents(ctx context.Context, campaignID int64) ([]domain.Content, error)

	// ListScheduledCandidates returns (campaign, schedule) pairs for
	// launchable campaigns of the medium whose schedule weekday equals the
	// given weekday. Time-of-day matching is left to the evaluator.
	ListScheduledCandidates(ctx context.Context, medium domain.Medium, weekday time.Weekday) ([]ScheduledCandidate, error)

	// ListUnscheduledCandidates returns launchable campaigns of the medium
	// with zero schedule rows, ordered by prior reference count ascending,
	// ties by campaign id ascending.
	ListUnscheduledCandidates(ctx context.Context, medium domain.Medium) ([]UnscheduledCandidate, error)

	// IncrementErrorCount bumps the consecutive launch-failure counter.
	IncrementErrorCount(ctx context.Context, campaignID int64) error

	// ResetErrorCount clears the counter; this is the operator action that
	// closes the breaker.
	ResetErrorCount(ctx context.Context, campaignID int64) error

	// SetStatus persists a status change together with the finish balance
	// snapshot.
	SetStatus(ctx context.Context, campaignID int64, status domain.CampaignStatus, finishBalance int64) error

	// ReplaceSchedules swaps a campaign's full schedule set.
	ReplaceSchedules(ctx context.Context, campaignID int64, rows []domain.Schedule) error
}

// ReferenceRepository is the persistence port for launch references. The
// admission-count read and the reserve insert run inside one serializable
// transaction so a concurrent tick cannot admit past the cap.
type ReferenceRepository interface {
	// Reserve inserts a new reference row with a nil remote id for the
	// window, but only if the campaign has no live reference overlapping
	// now and, for pool (unscheduled) candidates, only while the live count
	// is below maxLive. It returns the created reference, or nil when the
	// reservation was declined.
	Reserve(ctx context.Context, ref *domain.Reference, now time.Time, maxLive int) (*domain.Reference, error)

	// Update persists the reference wholesale, contents included.
	Update(ctx context.Context, ref *domain.Reference) error

	// HasLiveOverlap reports whether the campaign already has a live
	// reference whose window contains the instant.
	HasLiveOverlap(ctx context.Context, campaignID int64, at time.Time) (bool, error)

	// LiveCount counts references with a remote id whose window contains
	// the instant.
	LiveCount(ctx context.Context, at time.Time) (int, error)

	// ListReportable returns references with a remote id and no report
	// time, for the reconciliation pass.
	ListReportable(ctx context.Context) ([]domain.Reference, error)

	// GetByIDs returns the named references; unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Reference, error)

	// ListByCampaign returns a campaign's references, newest first.
	ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Reference, error)
}

package domain

import "time"

// Medium identifies the external platform a campaign is delivered through.
type Medium string

const (
	MediumWeb            Medium = "web"
	MediumInApp          Medium = "in_app"
	MediumTelegram       Medium = "telegram"
	MediumInstagramPost  Medium = "instagram_post"
	MediumInstagramStory Medium = "instagram_story"
	MediumPushMobile     Medium = "push_mobile"
	MediumPushWeb        Medium = "push_web"
)

// CampaignStatus is the lifecycle state of a campaign. Campaigns are
// editable only while in draft; once approved they are frozen except for
// system-managed fields (status, error_count, finish_balance).
type CampaignStatus string

const (
	StatusDraft    CampaignStatus = "draft"
	StatusWaiting  CampaignStatus = "waiting"
	StatusApproved CampaignStatus = "approved"
	StatusRejected CampaignStatus = "rejected"
)

// ErrorThreshold is the number of consecutive remote launch failures after
// which a campaign is excluded from automatic launch until an operator
// resets its error count.
const ErrorThreshold = 5

// Campaign represents an advertiser's intent to run ads on one medium.
// Budgets are stored in integer units (e.g. cents).
type Campaign struct {
	ID            int64
	OwnerID       int64
	Name          string
	Medium        Medium
	Status        CampaignStatus
	StartDate     time.Time
	EndDate       *time.Time
	DailyBudget   int64
	TotalBudget   int64
	ErrorCount    int
	IsEnable      bool
	// ScreenshotFileID points at the channel screenshot Telegram requires
	// before content creation. Unused by other mediums.
	ScreenshotFileID *string
	// FinishBalance is the spent portion of the total budget. The billing
	// collaborator settles it as views are consumed; this service only
	// reads it, to size the refund when an approved campaign is rejected.
	FinishBalance int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Editable reports whether user-facing fields may still be modified.
func (c *Campaign) Editable() bool {
	return c.Status == StatusDraft
}

// CircuitOpen reports whether the campaign is paused by the launch-failure
// breaker and must be skipped by automatic scheduling.
func (c *Campaign) CircuitOpen() bool {
	return c.ErrorCount >= ErrorThreshold
}

// Launchable reports whether the campaign may be picked up by a scheduling
// tick at all: approved, enabled and not circuit-broken.
func (c *Campaign) Launchable() bool {
	return c.Status == StatusApproved && c.IsEnable && !c.CircuitOpen()
}

// RemainingViews derives the view cap a new reference is created with. The
// total budget is divided by the cheapest per-view price among the
// campaign's contents (CPV prices are per thousand views). Contents
// without a CPV price do not constrain the cap; a campaign with no priced
// content gets a zero cap and effectively cannot go live.
func (c *Campaign) RemainingViews(contents []Content) int64 {
	var cheapest int64
	for _, ct := range contents {
		if ct.CostModel != CostPerView || ct.CostModelPrice <= 0 {
			continue
		}
		if cheapest == 0 || ct.CostModelPrice < cheapest {
			cheapest = ct.CostModelPrice
		}
	}
	if cheapest == 0 {
		return 0
	}
	return c.TotalBudget * 1000 / cheapest
}

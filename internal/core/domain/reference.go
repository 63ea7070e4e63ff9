package domain

import (
	"encoding/json"
	"time"
)

// HourlyPoint is one entry of an hourly view series. Hour is the
// zero-padded 24-hour label ("09", "23"); Views is either a cumulative
// count or a per-hour delta depending on which series it belongs to.
type HourlyPoint struct {
	Hour  string `json:"hour"`
	Views int64  `json:"views"`
}

// ReferenceContent is the per-content slice of a reference's remote state:
// the remote content id, the latest reported view count and detail payload,
// and the two derived hourly series.
type ReferenceContent struct {
	ContentID             int64           `json:"content"`
	RefID                 string          `json:"ref_id"`
	Views                 int64           `json:"views"`
	Detail                json.RawMessage `json:"detail,omitempty"`
	GraphHourlyCumulative []HourlyPoint   `json:"graph_hourly_cumulative,omitempty"`
	GraphHourlyView       []HourlyPoint   `json:"graph_hourly_view,omitempty"`
}

// ReferenceContents is the embedded JSON value object stored on a
// reference. It is always read and written wholesale.
type ReferenceContents []ReferenceContent

// Find returns the entry with the given remote content id, or nil.
func (rc ReferenceContents) Find(refID string) *ReferenceContent {
	for i := range rc {
		if rc[i].RefID == refID {
			return &rc[i]
		}
	}
	return nil
}

// Reference is one concrete launch attempt of a campaign into a remote
// platform for the half-open window [ScheduleStart, ScheduleEnd). RefID is
// nil until the remote campaign was created and enabled; a row with a nil
// RefID is the audit trail of a failed attempt and never counts as live.
//
// Lifecycle: created (RefID nil) -> live (RefID set, now inside window) ->
// reporting (now past window, ReportTime nil) -> finalized (ReportTime
// set). There is no transition back; the next window gets a new reference.
type Reference struct {
	ID            int64
	CampaignID    int64
	Token         string // client-side idempotency token for remote naming
	RefID         *string
	ScheduleStart time.Time
	ScheduleEnd   time.Time
	MaxView       int64
	ReportTime    *time.Time
	Contents      ReferenceContents
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Live reports whether the reference occupies a concurrency slot at t:
// remote id assigned and t inside the window.
func (r *Reference) Live(t time.Time) bool {
	return r.RefID != nil && !t.Before(r.ScheduleStart) && t.Before(r.ScheduleEnd)
}

// WindowElapsed reports whether t is past the end of the window.
func (r *Reference) WindowElapsed(t time.Time) bool {
	return t.After(r.ScheduleEnd)
}

// Reportable reports whether the reconciler should still poll this
// reference: it went live at some point and has not been finalized.
func (r *Reference) Reportable() bool {
	return r.RefID != nil && r.ReportTime == nil
}

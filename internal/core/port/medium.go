package port

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adpilot/internal/core/domain"
)

// File is a creative asset resolved from the file store, ready to be
// pushed to a medium.
type File struct {
	Name    string
	Content []byte
}

// ContentReport is one content's slice of a remote campaign report. Hourly
// maps the 24-hour label ("09") to a cumulative view count as of that hour.
type ContentReport struct {
	ContentRefID string
	Views        int64
	Detail       json.RawMessage
	Hourly       map[string]int64
}

// MediumAdapter translates campaign domain objects into remote platform
// calls. One implementation exists per medium; the launcher and the
// reconciler depend only on this interface. All calls are synchronous HTTP
// with a bounded timeout; a non-2xx response surfaces as a *RequestError.
type MediumAdapter interface {
	// Medium returns the medium this adapter drives.
	Medium() domain.Medium

	// CreateCampaign registers the campaign remotely for the given window
	// and returns the remote campaign id. The remote campaign is created
	// approved but disabled; EnableCampaign flips it live.
	CreateCampaign(ctx context.Context, c *domain.Campaign, start, end time.Time) (string, error)

	// CreateContent registers one creative under the remote campaign and
	// returns the remote content id.
	CreateContent(ctx context.Context, content *domain.Content, remoteCampaignID string) (string, error)

	// CreateFile attaches a creative asset to the remote content.
	CreateFile(ctx context.Context, file File, remoteCampaignID, remoteContentID string) error

	// EnableCampaign switches the remote campaign live.
	EnableCampaign(ctx context.Context, remoteCampaignID string) error

	// CampaignReport fetches per-content view reports for a remote campaign.
	CampaignReport(ctx context.Context, remoteCampaignID string) ([]ContentReport, error)

	// GetCampaign fetches the raw remote campaign payload. This is the
	// diagnostic path and uses the adapter's extended timeout, since the
	// remote platform materializes output slowly.
	GetCampaign(ctx context.Context, remoteCampaignID string) (json.RawMessage, error)
}

// RequestError is a failed remote call: a non-2xx response with whatever
// body the platform returned.
type RequestError struct {
	Medium     domain.Medium
	Op         string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: status=%d body=%s", e.Medium, e.Op, e.StatusCode, e.Body)
}

package medium

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"adpilot/internal/config/configs"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// File-count caps per content kind: a single video, or up to ten album
// images.
const (
	instagramVideoFileCap = 1
	instagramAlbumFileCap = 10
)

// Instagram drives the Instagram ad API for both post and story
// placements. Stories and posts carry exactly one content; the adapter
// enforces that plus the per-kind file caps, so a misshapen campaign fails
// here with a clear error instead of a remote rejection.
type Instagram struct {
	client *client
	medium domain.Medium

	// Launch bookkeeping, pruned once the campaign is enabled so a
	// long-running process does not accumulate entries.
	mu           sync.Mutex
	contentCount map[string]int // remote campaign id -> contents created
	fileCount    map[string]int // remote content id -> files uploaded
	contentKind  map[string]domain.ContentKind
	contents     map[string][]string // remote campaign id -> its content ids
}

func NewInstagram(m domain.Medium, cfg configs.MediumAPI) *Instagram {
	return &Instagram{
		client:       newClient(m, cfg),
		medium:       m,
		contentCount: make(map[string]int),
		fileCount:    make(map[string]int),
		contentKind:  make(map[string]domain.ContentKind),
		contents:     make(map[string][]string),
	}
}

func (ig *Instagram) Medium() domain.Medium { return ig.medium }

func (ig *Instagram) CreateCampaign(ctx context.Context, c *domain.Campaign, start, end time.Time) (string, error) {
	payload := map[string]any{
		"name":      c.Name,
		"placement": placementOf(ig.medium),
		"start":     start.Format(time.RFC3339),
		"end":       end.Format(time.RFC3339),
		"status":    "approved",
		"is_enable": false,
	}
	var out remoteID
	if err := ig.client.postJSON(ctx, "create_campaign", "/v1/campaigns", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (ig *Instagram) CreateContent(ctx context.Context, content *domain.Content, remoteCampaignID string) (string, error) {
	ig.mu.Lock()
	if ig.contentCount[remoteCampaignID] >= 1 {
		ig.mu.Unlock()
		return "", fmt.Errorf("%s campaign %s: stories and posts carry a single content", ig.medium, remoteCampaignID)
	}
	ig.mu.Unlock()

	payload := map[string]any{
		"title":            content.Title,
		"landing":          json.RawMessage(content.Landing),
		"kind":             string(content.Kind),
		"cost_model":       string(content.CostModel),
		"cost_model_price": content.CostModelPrice,
	}
	var out remoteID
	if err := ig.client.postJSON(ctx, "create_content", "/v1/campaigns/"+remoteCampaignID+"/media", payload, &out); err != nil {
		return "", err
	}

	ig.mu.Lock()
	ig.contentCount[remoteCampaignID]++
	ig.contentKind[out.ID] = content.Kind
	ig.contents[remoteCampaignID] = append(ig.contents[remoteCampaignID], out.ID)
	ig.mu.Unlock()
	return out.ID, nil
}

func (ig *Instagram) CreateFile(ctx context.Context, file port.File, remoteCampaignID, remoteContentID string) error {
	ig.mu.Lock()
	limit := instagramAlbumFileCap
	if ig.contentKind[remoteContentID] == domain.KindVideo {
		limit = instagramVideoFileCap
	}
	if ig.fileCount[remoteContentID] >= limit {
		ig.mu.Unlock()
		return fmt.Errorf("%s content %s: file cap %d exceeded", ig.medium, remoteContentID, limit)
	}
	ig.mu.Unlock()

	path := "/v1/campaigns/" + remoteCampaignID + "/media/" + remoteContentID + "/files"
	if err := ig.client.upload(ctx, "create_media", path, file, nil); err != nil {
		return err
	}

	ig.mu.Lock()
	ig.fileCount[remoteContentID]++
	ig.mu.Unlock()
	return nil
}

func (ig *Instagram) EnableCampaign(ctx context.Context, remoteCampaignID string) error {
	err := ig.client.postJSON(ctx, "enable_campaign", "/v1/campaigns/"+remoteCampaignID+"/enable", map[string]bool{"enabled": true}, nil)
	if err != nil {
		return err
	}

	// Enabling ends the launch; drop its bookkeeping.
	ig.mu.Lock()
	for _, contentID := range ig.contents[remoteCampaignID] {
		delete(ig.fileCount, contentID)
		delete(ig.contentKind, contentID)
	}
	delete(ig.contents, remoteCampaignID)
	delete(ig.contentCount, remoteCampaignID)
	ig.mu.Unlock()
	return nil
}

type instagramReportItem struct {
	MediaID string           `json:"media_id"`
	Views   int64            `json:"views"`
	Detail  json.RawMessage  `json:"detail"`
	Hourly  map[string]int64 `json:"hourly"`
}

func (ig *Instagram) CampaignReport(ctx context.Context, remoteCampaignID string) ([]port.ContentReport, error) {
	var wrapper struct {
		Results []instagramReportItem `json:"results"`
	}
	if err := ig.client.getJSON(ctx, "campaign_report", "/v1/campaigns/"+remoteCampaignID+"/report", &wrapper); err != nil {
		return nil, err
	}
	reports := make([]port.ContentReport, 0, len(wrapper.Results))
	for _, it := range wrapper.Results {
		reports = append(reports, port.ContentReport{
			ContentRefID: it.MediaID,
			Views:        it.Views,
			Detail:       it.Detail,
			Hourly:       it.Hourly,
		})
	}
	return reports, nil
}

func (ig *Instagram) GetCampaign(ctx context.Context, remoteCampaignID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := ig.client.getJSONDiagnostic(ctx, "get_campaign", "/v1/campaigns/"+remoteCampaignID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func placementOf(m domain.Medium) string {
	if m == domain.MediumInstagramStory {
		return "story"
	}
	return "post"
}

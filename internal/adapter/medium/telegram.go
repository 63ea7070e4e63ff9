package medium

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"adpilot/internal/config/configs"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// Telegram drives the Telegram channel-network ad API. Telegram wants a
// channel screenshot uploaded once per campaign, keyed by its file hash,
// before any content is created; CreateCampaign takes care of that so
// content creation never races the upload.
type Telegram struct {
	client *client
	files  port.FileStore
}

func NewTelegram(cfg configs.MediumAPI, files port.FileStore) *Telegram {
	return &Telegram{
		client: newClient(domain.MediumTelegram, cfg),
		files:  files,
	}
}

func (t *Telegram) Medium() domain.Medium { return domain.MediumTelegram }

type telegramCampaignPayload struct {
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Status   string `json:"status"`
	IsEnable bool   `json:"is_enable"`
}

type remoteID struct {
	ID string `json:"id"`
}

func (t *Telegram) CreateCampaign(ctx context.Context, c *domain.Campaign, start, end time.Time) (string, error) {
	payload := telegramCampaignPayload{
		Name:     c.Name,
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
		Status:   "approved",
		IsEnable: false,
	}
	var out remoteID
	if err := t.client.postJSON(ctx, "create_campaign", "/api/campaigns/", payload, &out); err != nil {
		return "", err
	}

	if c.ScreenshotFileID != nil {
		if err := t.uploadScreenshot(ctx, *c.ScreenshotFileID, out.ID); err != nil {
			return "", err
		}
	}
	return out.ID, nil
}

// uploadScreenshot pushes the channel screenshot with its telegram file
// hash so the platform can dedupe re-uploads of the same image.
func (t *Telegram) uploadScreenshot(ctx context.Context, fileID, remoteCampaignID string) error {
	file, err := t.files.Resolve(ctx, fileID)
	if err != nil {
		return fmt.Errorf("telegram screenshot %s: %w", fileID, err)
	}
	sum := sha1.Sum(file.Content)
	return t.client.upload(ctx, "create_file", "/api/campaigns/"+remoteCampaignID+"/screenshot/", *file, map[string]string{
		"file_hash": hex.EncodeToString(sum[:]),
	})
}

func (t *Telegram) CreateContent(ctx context.Context, content *domain.Content, remoteCampaignID string) (string, error) {
	payload := map[string]any{
		"title":            content.Title,
		"landing":          json.RawMessage(content.Landing),
		"cost_model":       string(content.CostModel),
		"cost_model_price": content.CostModelPrice,
	}
	var out remoteID
	if err := t.client.postJSON(ctx, "create_content", "/api/campaigns/"+remoteCampaignID+"/contents/", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (t *Telegram) CreateFile(ctx context.Context, file port.File, remoteCampaignID, remoteContentID string) error {
	sum := sha1.Sum(file.Content)
	path := "/api/campaigns/" + remoteCampaignID + "/contents/" + remoteContentID + "/files/"
	return t.client.upload(ctx, "create_file", path, file, map[string]string{
		"file_hash": hex.EncodeToString(sum[:]),
	})
}

func (t *Telegram) EnableCampaign(ctx context.Context, remoteCampaignID string) error {
	return t.client.postJSON(ctx, "enable_campaign", "/api/campaigns/"+remoteCampaignID+"/enable/", map[string]bool{"is_enable": true}, nil)
}

type telegramReportItem struct {
	ContentID string           `json:"content_id"`
	Views     int64            `json:"views"`
	Detail    json.RawMessage  `json:"detail"`
	Hourly    map[string]int64 `json:"hourly"`
}

func (t *Telegram) CampaignReport(ctx context.Context, remoteCampaignID string) ([]port.ContentReport, error) {
	var items []telegramReportItem
	if err := t.client.getJSON(ctx, "campaign_report", "/api/campaigns/"+remoteCampaignID+"/report/", &items); err != nil {
		return nil, err
	}
	reports := make([]port.ContentReport, 0, len(items))
	for _, it := range items {
		reports = append(reports, port.ContentReport{
			ContentRefID: it.ContentID,
			Views:        it.Views,
			Detail:       it.Detail,
			Hourly:       it.Hourly,
		})
	}
	return reports, nil
}

func (t *Telegram) GetCampaign(ctx context.Context, remoteCampaignID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := t.client.getJSONDiagnostic(ctx, "get_campaign", "/api/campaigns/"+remoteCampaignID+"/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

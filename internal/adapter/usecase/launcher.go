package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// Launcher runs the full go-live sequence for one campaign: reserve a
// reference row for the window, create the remote campaign, push contents
// and their files, enable, then mark the reference live by recording the
// remote id.
type Launcher struct {
	adapter   port.MediumAdapter
	campaigns port.CampaignRepository
	refs      port.ReferenceRepository
	files     port.FileStore
	logger    *slog.Logger
}

func NewLauncher(adapter port.MediumAdapter, campaigns port.CampaignRepository, refs port.ReferenceRepository, files port.FileStore, logger *slog.Logger) *Launcher {
	return &Launcher{adapter: adapter, campaigns: campaigns, refs: refs, files: files, logger: logger}
}

// Launch attempts to take the campaign live for [start, end). It returns
// (nil, nil) for the quiet skips: the error breaker is open, the campaign
// already has a live reference overlapping now, or the reservation was
// declined (pool full, or a concurrent reservation won). maxLive caps the
// shared pool for unscheduled candidates; zero or negative means the
// window was reserved in advance and no cap applies.
//
// On a remote failure the campaign's error count is incremented and the
// reserved row stays behind with a nil remote id as the audit trail of the
// attempt; it never counts as live. The error is returned for the caller
// to log.
func (l *Launcher) Launch(ctx context.Context, c *domain.Campaign, start, end, now time.Time, maxLive int) (*domain.Reference, error) {
	if c.CircuitOpen() {
		l.logger.Debug("launch skipped, error breaker open",
			slog.Int64("campaign", c.ID), slog.Int("error_count", c.ErrorCount))
		return nil, nil
	}

	overlap, err := l.refs.HasLiveOverlap(ctx, c.ID, now)
	if err != nil {
		return nil, err
	}
	if overlap {
		l.logger.Debug("launch skipped, already live", slog.Int64("campaign", c.ID))
		return nil, nil
	}

	contents, err := l.campaigns.ListContents(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	ref := &domain.Reference{
		CampaignID:    c.ID,
		Token:         uuid.NewString(),
		ScheduleStart: start,
		ScheduleEnd:   end,
		MaxView:       c.RemainingViews(contents),
	}
	ref, err = l.refs.Reserve(ctx, ref, now, maxLive)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		l.logger.Debug("launch skipped, reservation declined", slog.Int64("campaign", c.ID))
		return nil, nil
	}

	remoteID, err := l.adapter.CreateCampaign(ctx, c, start, end)
	if err != nil {
		return nil, l.fail(ctx, c, ref, err)
	}

	for i := range contents {
		content := &contents[i]
		remoteContentID, err := l.adapter.CreateContent(ctx, content, remoteID)
		if err != nil {
			return nil, l.fail(ctx, c, ref, err)
		}
		for _, fileID := range content.FileIDs {
			file, err := l.files.Resolve(ctx, fileID)
			if err != nil {
				return nil, l.fail(ctx, c, ref, err)
			}
			if err = l.adapter.CreateFile(ctx, *file, remoteID, remoteContentID); err != nil {
				return nil, l.fail(ctx, c, ref, err)
			}
		}
		ref.Contents = append(ref.Contents, domain.ReferenceContent{
			ContentID: content.ID,
			RefID:     remoteContentID,
		})
	}

	if err = l.adapter.EnableCampaign(ctx, remoteID); err != nil {
		return nil, l.fail(ctx, c, ref, err)
	}

	ref.RefID = &remoteID
	if err = l.refs.Update(ctx, ref); err != nil {
		return nil, err
	}
	l.logger.Info("campaign live",
		slog.Int64("campaign", c.ID),
		slog.String("ref_id", remoteID),
		slog.Time("window_end", end))
	return ref, nil
}

// fail records a remote launch failure: the error counter moves, the
// reference keeps whatever was created before the failure, and the
// original error goes back to the caller.
func (l *Launcher) fail(ctx context.Context, c *domain.Campaign, ref *domain.Reference, cause error) error {
	c.ErrorCount++
	if err := l.campaigns.IncrementErrorCount(ctx, c.ID); err != nil {
		l.logger.Error("increment error count", slog.Int64("campaign", c.ID), slog.Any("error", err))
	}
	if err := l.refs.Update(ctx, ref); err != nil {
		l.logger.Error("persist failed reference", slog.Int64("campaign", c.ID), slog.Any("error", err))
	}
	return cause
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository on pgxpool.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `
	c.id, c.owner_id, c.name, c.medium, c.status, c.start_date, c.end_date,
	c.daily_budget, c.total_budget, c.error_count, c.is_enable,
	c.finish_balance, c.screenshot_file_id, c.created_at, c.updated_at`

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Medium, &c.Status, &c.StartDate, &c.EndDate,
		&c.DailyBudget, &c.TotalBudget, &c.ErrorCount, &c.IsEnable,
		&c.FinishBalance, &c.ScreenshotFileID, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT`+campaignColumns+` FROM campaigns c WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListContents(ctx context.Context, campaignID int64) ([]domain.Content, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, campaign_id, title, landing, cost_model, cost_model_price,
		       kind, file_ids, created_at, updated_at
		FROM campaign_contents WHERE campaign_id = $1 ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Content, error) {
		var ct domain.Content
		err := row.Scan(&ct.ID, &ct.CampaignID, &ct.Title, &ct.Landing, &ct.CostModel,
			&ct.CostModelPrice, &ct.Kind, &ct.FileIDs, &ct.CreatedAt, &ct.UpdatedAt)
		return ct, err
	})
}

// ListScheduledCandidates joins launchable campaigns with their schedule
// rows for the given weekday. Time-of-day containment is evaluated by the
// caller against its own clock.
func (r *CampaignRepository) ListScheduledCandidates(ctx context.Context, medium domain.Medium, weekday time.Weekday) ([]port.ScheduledCandidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+campaignColumns+`,
		       s.id, s.campaign_id, s.weekday, s.start_minute, s.end_minute
		FROM campaigns c
		JOIN campaign_schedules s ON s.campaign_id = c.id
		WHERE c.medium = $1
		  AND c.status = 'approved'
		  AND c.is_enable
		  AND c.error_count < $2
		  AND s.weekday = $3
		ORDER BY c.id, s.start_minute`,
		medium, domain.ErrorThreshold, int(weekday))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (port.ScheduledCandidate, error) {
		var (
			cand    port.ScheduledCandidate
			weekday int
			start   int
			end     int
		)
		c := &cand.Campaign
		s := &cand.Schedule
		err := row.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Medium, &c.Status, &c.StartDate, &c.EndDate,
			&c.DailyBudget, &c.TotalBudget, &c.ErrorCount, &c.IsEnable,
			&c.FinishBalance, &c.ScreenshotFileID, &c.CreatedAt, &c.UpdatedAt,
			&s.ID, &s.CampaignID, &weekday, &start, &end,
		)
		s.Weekday = time.Weekday(weekday)
		s.StartTime = domain.TimeOfDay(start)
		s.EndTime = domain.TimeOfDay(end)
		return cand, err
	})
}

// ListUnscheduledCandidates returns launchable campaigns without schedule
// rows, fewest prior references first, ties by id, so pool admission is
// fair and deterministic.
func (r *CampaignRepository) ListUnscheduledCandidates(ctx context.Context, medium domain.Medium) ([]port.UnscheduledCandidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+campaignColumns+`,
		       (SELECT count(*) FROM campaign_references ref WHERE ref.campaign_id = c.id) AS prior_runs
		FROM campaigns c
		WHERE c.medium = $1
		  AND c.status = 'approved'
		  AND c.is_enable
		  AND c.error_count < $2
		  AND NOT EXISTS (SELECT 1 FROM campaign_schedules s WHERE s.campaign_id = c.id)
		ORDER BY prior_runs, c.id`,
		medium, domain.ErrorThreshold)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (port.UnscheduledCandidate, error) {
		var cand port.UnscheduledCandidate
		c := &cand.Campaign
		err := row.Scan(
			&c.ID, &c.OwnerID, &c.Name, &c.Medium, &c.Status, &c.StartDate, &c.EndDate,
			&c.DailyBudget, &c.TotalBudget, &c.ErrorCount, &c.IsEnable,
			&c.FinishBalance, &c.ScreenshotFileID, &c.CreatedAt, &c.UpdatedAt,
			&cand.PriorRuns,
		)
		return cand, err
	})
}

func (r *CampaignRepository) IncrementErrorCount(ctx context.Context, campaignID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET error_count = error_count + 1, updated_at = now() WHERE id = $1`, campaignID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *CampaignRepository) ResetErrorCount(ctx context.Context, campaignID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET error_count = 0, updated_at = now() WHERE id = $1`, campaignID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *CampaignRepository) SetStatus(ctx context.Context, campaignID int64, status domain.CampaignStatus, finishBalance int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET status = $2, finish_balance = $3, updated_at = now() WHERE id = $1`,
		campaignID, status, finishBalance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// ReplaceSchedules swaps the campaign's schedule set atomically. Overlap
// validation happens in the domain before this is called.
func (r *CampaignRepository) ReplaceSchedules(ctx context.Context, campaignID int64, schedules []domain.Schedule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM campaign_schedules WHERE campaign_id = $1`, campaignID); err != nil {
		return err
	}
	for _, s := range schedules {
		_, err = tx.Exec(ctx, `
			INSERT INTO campaign_schedules (campaign_id, weekday, start_minute, end_minute)
			VALUES ($1, $2, $3, $4)`,
			campaignID, int(s.Weekday), int(s.StartTime), int(s.EndTime))
		if err != nil {
			return err
		}
	}
	return nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"adpilot/internal/core/domain"
)

// ReferenceRepository implements port.ReferenceRepository on pgxpool. The
// reference contents list is an embedded jsonb value, always read and
// written wholesale.
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

const referenceColumns = `
	id, campaign_id, token, ref_id, schedule_start, schedule_end,
	max_view, report_time, contents, created_at, updated_at`

func scanReference(row pgx.Row) (domain.Reference, error) {
	var (
		ref      domain.Reference
		contents []byte
	)
	err := row.Scan(
		&ref.ID, &ref.CampaignID, &ref.Token, &ref.RefID,
		&ref.ScheduleStart, &ref.ScheduleEnd,
		&ref.MaxView, &ref.ReportTime, &contents,
		&ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		return ref, err
	}
	if len(contents) > 0 {
		if err = json.Unmarshal(contents, &ref.Contents); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// Reserve inserts the reference row with a nil remote id, holding the
// window. The live-count read and the insert run in one serializable
// transaction: a concurrent tick cannot admit past maxLive or double
// reserve a campaign, it just loses the serialization race and the
// reservation is declined. maxLive <= 0 skips the pool cap (scheduled
// campaigns reserved their window in advance).
func (r *ReferenceRepository) Reserve(ctx context.Context, ref *domain.Reference, now time.Time, maxLive int) (*domain.Reference, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if maxLive > 0 {
		var live int
		err = tx.QueryRow(ctx, `
			SELECT count(*) FROM campaign_references
			WHERE ref_id IS NOT NULL AND schedule_start <= $1 AND $1 < schedule_end`, now).Scan(&live)
		if err != nil {
			return nil, err
		}
		if live >= maxLive {
			return nil, nil
		}
	}

	var overlapping bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaign_references
			WHERE campaign_id = $1 AND ref_id IS NOT NULL
			  AND schedule_start <= $2 AND $2 < schedule_end
		)`, ref.CampaignID, now).Scan(&overlapping)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, nil
	}

	contents, err := json.Marshal(ref.Contents)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO campaign_references
			(campaign_id, token, schedule_start, schedule_end, max_view, contents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		ref.CampaignID, ref.Token, ref.ScheduleStart, ref.ScheduleEnd, ref.MaxView, contents,
	).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return nil, nil
		}
		return nil, err
	}
	return ref, nil
}

// isSerializationFailure matches SQLSTATE 40001, the losing side of two
// concurrent serializable reservations.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

func (r *ReferenceRepository) Update(ctx context.Context, ref *domain.Reference) error {
	contents, err := json.Marshal(ref.Contents)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE campaign_references
		SET ref_id = $2, max_view = $3, report_time = $4, contents = $5, updated_at = now()
		WHERE id = $1`,
		ref.ID, ref.RefID, ref.MaxView, ref.ReportTime, contents)
	return err
}

func (r *ReferenceRepository) HasLiveOverlap(ctx context.Context, campaignID int64, at time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM campaign_references
			WHERE campaign_id = $1 AND ref_id IS NOT NULL
			  AND schedule_start <= $2 AND $2 < schedule_end
		)`, campaignID, at).Scan(&exists)
	return exists, err
}

func (r *ReferenceRepository) LiveCount(ctx context.Context, at time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM campaign_references
		WHERE ref_id IS NOT NULL AND schedule_start <= $1 AND $1 < schedule_end`, at).Scan(&n)
	return n, err
}

func (r *ReferenceRepository) ListReportable(ctx context.Context) ([]domain.Reference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+referenceColumns+`
		FROM campaign_references
		WHERE ref_id IS NOT NULL AND report_time IS NULL
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reference, error) {
		return scanReference(row)
	})
}

func (r *ReferenceRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Reference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+referenceColumns+`
		FROM campaign_references
		WHERE id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reference, error) {
		return scanReference(row)
	})
}

func (r *ReferenceRepository) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Reference, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+referenceColumns+`
		FROM campaign_references
		WHERE campaign_id = $1
		ORDER BY id DESC`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reference, error) {
		return scanReference(row)
	})
}

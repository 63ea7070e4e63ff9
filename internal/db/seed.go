package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo campaigns into a development database: a scheduled
// Telegram campaign with a weekday evening window, an unscheduled
// Instagram post campaign competing for the shared pool, and contents for
// both.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	type demoCampaign struct {
		id     int64
		name   string
		medium string
	}
	campaigns := []demoCampaign{
		{1, "Channel promo", "telegram"},
		{2, "Story teaser", "instagram_post"},
	}

	start := time.Now().AddDate(0, 0, -1)
	for _, c := range campaigns {
		_, err := db.Exec(ctx, `INSERT INTO campaigns
    (id, owner_id, name, medium, status, start_date, daily_budget, total_budget,
     error_count, is_enable, finish_balance, created_at, updated_at)
VALUES ($1,$2,$3,$4,'approved',$5,$6,$7,0,true,0,now(),now()) ON CONFLICT DO NOTHING`,
			c.id, 100+c.id, c.name, c.medium, start, int64(100000), int64(500000))
		if err != nil {
			return err
		}

		landing, _ := json.Marshal(map[string]string{
			"url":  fmt.Sprintf("https://example.com/landing/%d", c.id),
			"text": c.name,
		})
		_, err = db.Exec(ctx, `INSERT INTO campaign_contents
    (id, campaign_id, title, landing, cost_model, cost_model_price, kind, file_ids, created_at, updated_at)
VALUES ($1,$2,$3,$4,'cpv',500,'', '{}',now(),now()) ON CONFLICT DO NOTHING`,
			c.id, c.id, c.name+" content", landing)
		if err != nil {
			return err
		}
	}

	// weekday evening windows for the telegram campaign; the instagram
	// campaign stays unscheduled and goes through pool admission
	for weekday := 1; weekday <= 5; weekday++ {
		_, err := db.Exec(ctx, `INSERT INTO campaign_schedules
    (campaign_id, weekday, start_minute, end_minute)
VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING`,
			1, weekday, 18*60, 22*60)
		if err != nil {
			return err
		}
	}
	return nil
}

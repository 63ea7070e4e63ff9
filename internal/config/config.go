package config

import (
	"github.com/caarlos0/env/v11"

	"adpilot/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library;
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// defaults. Use Load to construct a Config.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	// HTTP holds configuration for the admin HTTP server.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Scheduler configures tick cadence and the concurrency pool.
	Scheduler configs.Scheduler `envPrefix:"SCHED_"`

	// Per-medium remote API sections. A medium with Enabled=false is not
	// driven at all.
	Telegram       configs.MediumAPI `envPrefix:"TELEGRAM_"`
	InstagramPost  configs.MediumAPI `envPrefix:"INSTAGRAM_POST_"`
	InstagramStory configs.MediumAPI `envPrefix:"INSTAGRAM_STORY_"`

	// Billing configures the external ledger collaborator.
	Billing configs.Billing `envPrefix:"BILLING_"`

	// S3 configures the creative asset store.
	S3 configs.S3 `envPrefix:"S3_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their specified defaults when no environment
// variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

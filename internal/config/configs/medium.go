package configs

import "time"

// MediumAPI configures one remote medium platform API. Each enabled
// medium gets its own section (TELEGRAM_, INSTAGRAM_POST_, ...).
type MediumAPI struct {
	// Enabled switches the adapter on; disabled mediums are never driven.
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	BaseURL string `env:"BASE_URL"`
	// Token is the bearer token sent on every request.
	Token string `env:"TOKEN"`
	// Timeout bounds every regular remote call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
	// DiagnosticTimeout bounds the get-campaign diagnostic read; the
	// remote platforms materialize that output slowly.
	DiagnosticTimeout time.Duration `env:"DIAGNOSTIC_TIMEOUT" envDefault:"120s"`
}

// Billing configures the external ledger service consumed on campaign
// status transitions.
type Billing struct {
	BaseURL string        `env:"BASE_URL"`
	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// S3 configures the object store holding uploaded creative assets.
type S3 struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

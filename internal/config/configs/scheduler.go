package configs

import "time"

// Scheduler configures the background scheduling and reporting cadence.
// Cadence is operator configuration; the core only assumes some external
// periodic trigger exists.
type Scheduler struct {
	// TickInterval is how often a scheduling tick runs.
	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"1m"`
	// ReconcileInterval is how often the report reconciliation pass runs.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"5m"`
	// MaxConcurrent caps how many references may be live at once across
	// the shared pool of unscheduled campaigns.
	MaxConcurrent int `env:"MAX_CONCURRENT" envDefault:"10"`
	// DefaultWindow is the launch window granted to an unscheduled
	// campaign admitted from the pool.
	DefaultWindow time.Duration `env:"DEFAULT_WINDOW" envDefault:"18h"`
}

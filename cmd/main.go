package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adpilot/internal/adapter/billing"
	httpadapter "adpilot/internal/adapter/http"
	"adpilot/internal/adapter/medium"
	"adpilot/internal/adapter/postgres"
	s3store "adpilot/internal/adapter/s3"
	"adpilot/internal/adapter/usecase"
	"adpilot/internal/config"
	"adpilot/internal/config/configs"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
	"adpilot/internal/db"
)

// main is the entry point of the adpilot orchestrator. It loads
// configuration, optionally runs database migrations, initializes the
// database pool, repositories and medium adapters, then starts the
// scheduling and reconciliation tickers and the admin HTTP server. On
// receiving a termination signal everything shuts down gracefully.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied successfully")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.SeedDemo {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		}
	}

	files, err := s3store.NewFileStore(ctx, cfg.S3)
	if err != nil {
		logger.Error("file store init error", slog.Any("error", err))
		os.Exit(1)
	}

	campaigns := postgres.NewCampaignRepository(pool)
	refs := postgres.NewReferenceRepository(pool)
	guard := postgres.NewAdvisoryGuard(pool)

	adapters := make(map[domain.Medium]port.MediumAdapter)
	for m, section := range map[domain.Medium]configs.MediumAPI{
		domain.MediumTelegram:       cfg.Telegram,
		domain.MediumInstagramPost:  cfg.InstagramPost,
		domain.MediumInstagramStory: cfg.InstagramStory,
	} {
		if !section.Enabled {
			continue
		}
		switch m {
		case domain.MediumTelegram:
			adapters[m] = medium.NewTelegram(section, files)
		default:
			adapters[m] = medium.NewInstagram(m, section)
		}
		logger.Info("medium adapter enabled", slog.String("medium", string(m)))
	}
	if len(adapters) == 0 {
		logger.Warn("no medium adapters enabled, nothing will launch")
	}

	launchers := make(map[domain.Medium]*usecase.Launcher, len(adapters))
	for m, adapter := range adapters {
		launchers[m] = usecase.NewLauncher(adapter, campaigns, refs, files, logger)
	}

	admission := usecase.NewAdmission(refs, cfg.Scheduler.MaxConcurrent)
	scheduler := usecase.NewScheduler(
		campaigns, admission, launchers, guard,
		cfg.Scheduler.MaxConcurrent, cfg.Scheduler.DefaultWindow, logger,
	)
	reconciler := usecase.NewReconciler(campaigns, refs, adapters, guard, logger)
	status := usecase.NewStatusService(campaigns, billing.NewClient(cfg.Billing), logger)

	go runEvery(ctx, cfg.Scheduler.TickInterval, func(now time.Time) {
		if err := scheduler.RunTick(ctx, now); err != nil {
			logger.Error("scheduling tick error", slog.Any("error", err))
		}
	})
	go runEvery(ctx, cfg.Scheduler.ReconcileInterval, func(now time.Time) {
		if err := reconciler.Reconcile(ctx, now); err != nil {
			logger.Error("reconcile pass error", slog.Any("error", err))
		}
	})

	handler := httpadapter.NewHandler(status, reconciler, campaigns, refs, adapters, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}

// runEvery invokes fn on a fixed cadence until the context ends. The first
// run happens after one interval, not immediately; startup should not race
// a deploy's previous instance for the tick guard.
func runEvery(ctx context.Context, interval time.Duration, fn func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			fn(now)
		case <-ctx.Done():
			return
		}
	}
}

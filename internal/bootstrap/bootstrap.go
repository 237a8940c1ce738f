// Package bootstrap wires configuration, storage, caches and services into
// the HTTP server and the ops CLI.
package bootstrap

import (
	"context"
	"errors"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/internal/cases"
	"github.com/lexpro/backoffice/internal/commissions"
	"github.com/lexpro/backoffice/internal/notify"
	"github.com/lexpro/backoffice/internal/reporting"
	"github.com/lexpro/backoffice/internal/storage"
	"github.com/lexpro/backoffice/internal/store"
	"github.com/lexpro/backoffice/pkg/config"
	"github.com/lexpro/backoffice/pkg/database"
)

// App holds every long-lived dependency.
type App struct {
	Cfg config.Config
	Log *zap.Logger

	DB    *gorm.DB
	Store *store.Postgres
	Redis *redis.Client
	Cache *cache.Cache

	Cases      *cases.Service
	Liquidator *commissions.Liquidator
	Loader     *reporting.Loader
	Publisher  *reporting.Publisher
	Reporter   *notify.Reporter
}

// New connects to Postgres (required) and Redis (optional) and builds the
// services. Call Close when done.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	st := store.New(db, cfg.DBTimeout, log)

	rdb := cache.Connect(ctx, cfg.RedisAddr, log)
	c := cache.New(rdb, cfg.CacheTTL, log)

	loader := reporting.NewLoader(st, c)

	var objects reporting.ObjectStore
	if sb := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket); sb.Enabled() {
		objects = sb
	} else {
		log.Info("object storage not configured; exports are streamed")
	}

	var sender notify.Sender
	if rs := notify.NewResendSender(cfg.ResendAPIKey); rs != nil {
		sender = rs
	} else {
		log.Info("RESEND_API_KEY not set; weekly report cannot be sent")
	}

	return &App{
		Cfg:        cfg,
		Log:        log,
		DB:         db,
		Store:      st,
		Redis:      rdb,
		Cache:      c,
		Cases:      cases.NewService(st, c, log),
		Liquidator: commissions.NewLiquidator(st, log),
		Loader:     loader,
		Publisher:  reporting.NewPublisher(objects, st, log),
		Reporter:   notify.NewReporter(st, loader, sender, cfg.ReportFrom, log),
	}, nil
}

// Migrate creates or updates the schema.
func (a *App) Migrate() error {
	if err := database.Migrate(a.DB); err != nil {
		return err
	}
	a.Log.Info("migrations applied")
	return nil
}

// StartScheduler runs the weekly report on its cron expression.
func (a *App) StartScheduler() (*gocron.Scheduler, error) {
	return notify.StartSchedule(a.Cfg.WeeklyReportCron, a.Reporter, a.Log)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

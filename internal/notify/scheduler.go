package notify

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// StartSchedule runs the weekly report on the given cron expression.
// The caller stops the returned scheduler on shutdown.
func StartSchedule(expr string, r *Reporter, log *zap.Logger) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()

	_, err := s.Cron(expr).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		log.Info("running weekly report job")
		res, err := r.SendWeeklyReport(ctx)
		if err != nil {
			log.Error("weekly report job failed", zap.Error(err))
			return
		}
		log.Info("weekly report job finished", zap.String("status", res.Status))
	})
	if err != nil {
		return nil, err
	}

	s.StartAsync()
	log.Info("weekly report scheduler started", zap.String("cron", expr))
	return s, nil
}

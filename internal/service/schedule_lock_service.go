package service

import (
	"context"
	"time"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/internal/repository"

	"go.uber.org/zap"
)

// ScheduleLockService freezes shifts once their day has passed
type ScheduleLockService struct {
	scheduleRepo *repository.ScheduleRepository
	log          *zap.Logger
}

func NewScheduleLockService(scheduleRepo *repository.ScheduleRepository, log *zap.Logger) *ScheduleLockService {
	return &ScheduleLockService{
		scheduleRepo: scheduleRepo,
		log:          log,
	}
}

// LockPast locks every shift dated before now's calendar day and returns how many changed.
func (w *ScheduleLockService) LockPast(ctx context.Context, now time.Time) (int64, error) {
	return w.scheduleRepo.LockBefore(ctx, models.DateOf(now.UTC()))
}

// Run locks past shifts immediately and then on every tick until ctx is cancelled.
func (w *ScheduleLockService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.log.Info("schedule lock job started", zap.Duration("interval", interval))
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("schedule lock job stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ScheduleLockService) tick(ctx context.Context) {
	n, err := w.LockPast(ctx, time.Now())
	if err != nil {
		w.log.Error("failed to lock past shifts", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("locked past shifts", zap.Int64("count", n))
	}
}

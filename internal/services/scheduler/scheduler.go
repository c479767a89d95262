// Package services содержит фоновые задачи обслуживания базы.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/pharmacy-management/internal/lib/sl"
)

// DefaultSweepInterval период очистки просроченных токенов сброса.
const DefaultSweepInterval = time.Hour

// ResetTokenRepository очищает просроченные токены сброса пароля.
type ResetTokenRepository interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// SchedulerService периодически выполняет задачи обслуживания.
type SchedulerService struct {
	repo     ResetTokenRepository
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo ResetTokenRepository, interval time.Duration, log *slog.Logger) *SchedulerService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SchedulerService{
		repo:     repo,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// SweepExpiredResetTokens чистит токены сразу и затем раз в interval, пока не отменён ctx.
func (s *SchedulerService) SweepExpiredResetTokens(ctx context.Context) {
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *SchedulerService) runSweep(ctx context.Context) {
	const op = "services.scheduler.runSweep"
	log := s.log.With(slog.String("op", op))

	n, err := s.repo.ClearExpiredResetTokens(ctx, s.now().UTC())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("failed to clear expired reset tokens", sl.Err(err))
		return
	}
	if n == 0 {
		log.Debug("no expired reset tokens found")
		return
	}
	log.Info("expired reset tokens cleared", slog.Int64("count", n))
}

package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/models"
)

// Scheduler runs the periodic housekeeping the auth flow relies on:
// purging dead sessions and clearing reset tokens past their expiry.
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
	lg   *zap.SugaredLogger
}

func NewScheduler(db *gorm.DB, lg *zap.SugaredLogger) *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithSeconds()), db: db, lg: lg}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.clearExpiredResetTokens); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) purgeSessions() {
	res := s.db.Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
		Delete(&models.Session{})
	if res.Error != nil {
		s.lg.Errorw("session purge failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		s.lg.Infow("purged sessions", "count", res.RowsAffected)
	}
}

func (s *Scheduler) clearExpiredResetTokens() {
	res := s.db.Model(&models.User{}).
		Where("reset_token IS NOT NULL AND reset_token_expires < ?", time.Now()).
		Updates(map[string]any{"reset_token": nil, "reset_token_expires": nil})
	if res.Error != nil {
		s.lg.Errorw("reset token cleanup failed", "error", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		s.lg.Infow("cleared expired reset tokens", "count", res.RowsAffected)
	}
}

package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/solohsu29/gondola-manager/internal/entity"
)

// Notifier is told about certificates that newly crossed into expiring or
// expired during a sweep.
type Notifier interface {
	CertificateAlert(cert entity.CertificateExpiry) error
}

// Sweeper periodically re-derives status and daysRemaining for every
// materialized certificate entry and every document with an expiry date, so
// stored status never drifts from wall-clock time by more than the interval.
type Sweeper struct {
	db       *gorm.DB
	logger   *zap.Logger
	notifier Notifier
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(db *gorm.DB, logger *zap.Logger, notifier Notifier, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		db:       db,
		logger:   logger,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if err := s.ReconcileOnce(ctx); err != nil {
		s.logger.Error("Certificate expiry sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ReconcileOnce(ctx); err != nil {
				s.logger.Error("Certificate expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// ReconcileOnce applies the derivation rule to all live entries, updating
// only rows whose stored status or daysRemaining changed. Running it twice
// without time passing is a no-op the second time.
func (s *Sweeper) ReconcileOnce(ctx context.Context) error {
	now := s.now()

	var certs []entity.CertificateExpiry
	if err := s.db.WithContext(ctx).Find(&certs).Error; err != nil {
		return err
	}

	updated := 0
	for _, cert := range certs {
		status, days := Classify(cert.ExpiryDate, now)
		if status == cert.Status && days == cert.DaysRemaining {
			continue
		}
		crossed := status != cert.Status && status != entity.DocStatusValid
		cert.Status = status
		cert.DaysRemaining = days
		if err := s.db.WithContext(ctx).Model(&entity.CertificateExpiry{}).
			Where("id = ?", cert.ID).
			Updates(map[string]interface{}{"status": status, "days_remaining": days}).Error; err != nil {
			return err
		}
		updated++
		if crossed && s.notifier != nil {
			if err := s.notifier.CertificateAlert(cert); err != nil {
				s.logger.Warn("Failed to send certificate alert",
					zap.String("serialNumber", cert.SerialNumber), zap.Error(err))
			}
		}
	}

	var docs []entity.Document
	if err := s.db.WithContext(ctx).
		Select(entity.DocumentListColumns).
		Where("expiry_date IS NOT NULL").
		Find(&docs).Error; err != nil {
		return err
	}
	for _, doc := range docs {
		status, _ := Classify(*doc.ExpiryDate, now)
		if status == doc.Status {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&entity.Document{}).
			Where("id = ?", doc.ID).
			Update("status", status).Error; err != nil {
			return err
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("Certificate expiry sweep completed", zap.Int("updated", updated))
	}
	return nil
}

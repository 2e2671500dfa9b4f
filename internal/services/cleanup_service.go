package services

import (
	"fmt"
	"time"

	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/utils"
	"go.uber.org/zap"
)

// CleanupService enforces sample and alert retention
type CleanupService struct {
	weatherRepo repository.WeatherRepository
	alertRepo   repository.AlertRepository
	logger      *utils.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(weatherRepo repository.WeatherRepository, alertRepo repository.AlertRepository, logger *utils.Logger) *CleanupService {
	return &CleanupService{
		weatherRepo: weatherRepo,
		alertRepo:   alertRepo,
		logger:      logger.Named("cleanup_service"),
	}
}

// Sweep soft-deletes samples observed strictly before now minus the retention
// window. Each city's most recent sample is always kept, even when it is
// older than the window. Empty city sweeps all cities.
func (s *CleanupService) Sweep(city string, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", utils.ErrValidation)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	count, err := s.weatherRepo.SoftDeleteOldSamples(city, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete old samples: %w", err)
	}

	s.logger.Info("Soft deleted old weather samples",
		zap.String("city", city),
		zap.Int64("count", count),
		zap.Int("retention_days", retentionDays),
	)
	return count, nil
}

// HardDelete permanently removes samples older than the grace window,
// keeping the newest sample per city like the soft sweep.
func (s *CleanupService) HardDelete(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", utils.ErrValidation)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	count, err := s.weatherRepo.HardDeleteOldSamples(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to hard delete old samples: %w", err)
	}

	s.logger.Info("Hard deleted old weather samples",
		zap.Int64("count", count),
		zap.Int("days", days),
	)
	return count, nil
}

// PurgeOldAlerts permanently removes alerts triggered before the retention
// window.
func (s *CleanupService) PurgeOldAlerts(days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", utils.ErrValidation)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	count, err := s.alertRepo.DeleteOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old alerts: %w", err)
	}

	s.logger.Info("Deleted old alerts",
		zap.Int64("count", count),
		zap.Int("days", days),
	)
	return count, nil
}

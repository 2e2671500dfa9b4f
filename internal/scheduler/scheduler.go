package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/weathervane/backend/internal/config"
	"github.com/weathervane/backend/internal/services"
	"github.com/weathervane/backend/internal/utils"
	"go.uber.org/zap"
)

const taskTimeout = 2 * time.Minute

// Scheduler runs the periodic pipeline: fetch, aggregate, alert check,
// retention sweep. Jobs run in singleton mode, so a tick that is still
// running causes the next tick to be skipped rather than stacked.
type Scheduler struct {
	cron     *gocron.Scheduler
	cfg      *config.Config
	provider *services.ServiceProvider
	logger   *utils.Logger
}

// New creates a scheduler with all periodic tasks registered
func New(cfg *config.Config, provider *services.ServiceProvider, logger *utils.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		cfg:      cfg,
		provider: provider,
		logger:   logger.Named("scheduler"),
	}

	tasks := []struct {
		name     string
		interval time.Duration
		run      func()
	}{
		{"fetch_weather", time.Duration(cfg.Scheduler.FetchIntervalMinutes) * time.Minute, s.fetchWeather},
		{"generate_dashboard", time.Duration(cfg.Scheduler.AggregateIntervalMinutes) * time.Minute, s.generateDashboard},
		{"check_alerts", time.Duration(cfg.Scheduler.AlertIntervalMinutes) * time.Minute, s.checkAlerts},
		{"cleanup", time.Duration(cfg.Scheduler.CleanupIntervalHours) * time.Hour, s.cleanup},
	}

	for _, task := range tasks {
		_, err := s.cron.Every(task.interval).
			Tag(task.name).
			SingletonMode().
			Do(task.run)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Registered periodic task",
			zap.String("task", task.name),
			zap.Duration("interval", task.interval),
		)
	}

	return s, nil
}

// Start begins running the registered tasks asynchronously
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	s.logger.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

// cities returns the set of cities to operate on: every city present in the
// store plus the configured one, so a fresh deployment starts fetching
// before any sample exists.
func (s *Scheduler) cities() []string {
	configured := s.cfg.OpenWeather.City

	stored, err := s.provider.GetWeatherService().KnownCities()
	if err != nil {
		s.logger.Error("Failed to list cities, using configured city only", zap.Error(err))
		return []string{configured}
	}

	for _, city := range stored {
		if city == configured {
			return stored
		}
	}
	return append(stored, configured)
}

func (s *Scheduler) fetchWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	for _, city := range s.cities() {
		if _, err := s.provider.GetWeatherService().FetchAndStore(ctx, city); err != nil {
			s.logger.Error("Scheduled fetch failed",
				zap.String("city", city),
				zap.Error(err),
			)
		}
	}
}

func (s *Scheduler) generateDashboard() {
	for _, city := range s.cities() {
		if _, err := s.provider.GetDashboardService().Refresh(city); err != nil {
			s.logger.Error("Scheduled dashboard refresh failed",
				zap.String("city", city),
				zap.Error(err),
			)
		}
	}
}

func (s *Scheduler) checkAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	for _, city := range s.cities() {
		if _, err := s.provider.GetAlertService().CheckAndCreateAlerts(ctx, city); err != nil {
			s.logger.Error("Scheduled alert check failed",
				zap.String("city", city),
				zap.Error(err),
			)
		}
	}
}

func (s *Scheduler) cleanup() {
	retention := s.cfg.Retention

	if _, err := s.provider.GetCleanupService().Sweep("", retention.SampleDays); err != nil {
		s.logger.Error("Scheduled sample sweep failed", zap.Error(err))
	}
	if _, err := s.provider.GetCleanupService().HardDelete(retention.HardDeleteDays); err != nil {
		s.logger.Error("Scheduled hard delete failed", zap.Error(err))
	}
	if _, err := s.provider.GetCleanupService().PurgeOldAlerts(retention.AlertDays); err != nil {
		s.logger.Error("Scheduled alert purge failed", zap.Error(err))
	}
}

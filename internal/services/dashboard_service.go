package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/weathervane/backend/internal/db/models"
	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/timeseries"
	"github.com/weathervane/backend/internal/utils"
	"go.uber.org/zap"
)

const (
	hourlyTrendHours  = 24
	dailyTrendDays    = 7
	distributionHours = 24
	summaryTypeHourly = "hourly"
)

// DashboardService pre-aggregates raw samples into the dashboard summary
// served to the UI.
type DashboardService struct {
	weatherRepo   repository.WeatherRepository
	dashboardRepo repository.DashboardRepository
	logger        *utils.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(weatherRepo repository.WeatherRepository, dashboardRepo repository.DashboardRepository, logger *utils.Logger) *DashboardService {
	return &DashboardService{
		weatherRepo:   weatherRepo,
		dashboardRepo: dashboardRepo,
		logger:        logger.Named("dashboard_service"),
	}
}

// GenerateSummary computes a fresh summary for a city from stored samples.
// A city with no samples yields a well-formed sparse summary, not an error.
func (s *DashboardService) GenerateSummary(city string) (*models.DashboardSummary, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	summary := &models.DashboardSummary{
		City:                  city,
		SummaryType:           summaryTypeHourly,
		GeneratedAt:           now,
		HourlyTrend:           []models.HourlyPoint{},
		DailyTrend:            []models.DailyPoint{},
		ConditionDistribution: map[string]int{},
	}

	latest, err := s.weatherRepo.GetLatestSample(city)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to read latest sample: %w", err)
	}
	if latest != nil {
		summary.Current = currentFromSample(latest)
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todaySamples, err := s.weatherRepo.GetSamplesByTimeRange(city, todayStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read today's samples: %w", err)
	}
	summary.TodayStats = timeseries.Stats(todaySamples)

	hourlySamples, err := s.weatherRepo.GetSamplesByTimeRange(city, now.Add(-hourlyTrendHours*time.Hour), now)
	if err != nil {
		return nil, fmt.Errorf("failed to read hourly window: %w", err)
	}
	summary.HourlyTrend = timeseries.HourlyBuckets(hourlySamples, hourlyTrendHours)

	dailySamples, err := s.weatherRepo.GetSamplesByTimeRange(city, now.AddDate(0, 0, -dailyTrendDays), now)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily window: %w", err)
	}
	summary.DailyTrend = timeseries.DailyBuckets(dailySamples, dailyTrendDays)

	distribution, err := s.weatherRepo.GetConditionDistribution(city, now.Add(-distributionHours*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to read condition distribution: %w", err)
	}
	summary.ConditionDistribution = distribution

	s.logger.Debug("Generated dashboard summary",
		zap.String("city", city),
		zap.Int("today_samples", summary.TodayStats.SampleCount),
		zap.Int("hourly_points", len(summary.HourlyTrend)),
		zap.Int("daily_points", len(summary.DailyTrend)),
	)

	return summary, nil
}

// SaveSummary replaces the stored summary for the summary's city. On failure
// the previously stored summary stays intact.
func (s *DashboardService) SaveSummary(summary *models.DashboardSummary) error {
	if err := s.dashboardRepo.UpsertSummary(summary); err != nil {
		s.logger.Error("Failed to save dashboard summary",
			zap.String("city", summary.City),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save summary: %w", err)
	}

	s.logger.Info("Saved dashboard summary",
		zap.String("city", summary.City),
		zap.Time("generated_at", summary.GeneratedAt),
	)
	return nil
}

// Refresh generates and saves a summary in one step, returning the new summary
func (s *DashboardService) Refresh(city string) (*models.DashboardSummary, error) {
	summary, err := s.GenerateSummary(city)
	if err != nil {
		return nil, err
	}
	if err := s.SaveSummary(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// GetLatestSummary returns the stored summary for a city
func (s *DashboardService) GetLatestSummary(city string) (*models.DashboardSummary, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}

	summary, err := s.dashboardRepo.GetLatestSummary(city)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return summary, nil
}

func currentFromSample(sample *models.WeatherSample) *models.CurrentWeather {
	return &models.CurrentWeather{
		Temperature:          sample.Temperature,
		FeelsLike:            sample.FeelsLike,
		Humidity:             sample.Humidity,
		Pressure:             sample.Pressure,
		WindSpeed:            sample.WindSpeed,
		WindDeg:              sample.WindDeg,
		ConditionMain:        sample.ConditionMain,
		ConditionDescription: sample.ConditionDescription,
		ConditionIcon:        sample.ConditionIcon,
		Cloudiness:           sample.Cloudiness,
		Visibility:           sample.Visibility,
		ObservedAt:           sample.ObservedAt,
		Sunrise:              sample.Sunrise,
		Sunset:               sample.Sunset,
	}
}

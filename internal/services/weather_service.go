package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weathervane/backend/internal/db/models"
	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/utils"
	"github.com/weathervane/backend/internal/weather"
	"go.uber.org/zap"
)

// WeatherService fetches current weather from the upstream API and stores
// raw samples.
type WeatherService struct {
	client      weather.Client
	weatherRepo repository.WeatherRepository
	logger      *utils.Logger
}

// NewWeatherService creates a new weather service
func NewWeatherService(client weather.Client, weatherRepo repository.WeatherRepository, logger *utils.Logger) *WeatherService {
	return &WeatherService{
		client:      client,
		weatherRepo: weatherRepo,
		logger:      logger.Named("weather_service"),
	}
}

// FetchAndStore fetches the current weather for a city and inserts one raw
// sample. No deduplication: every fetch appends. Upstream failures leave the
// store untouched.
func (s *WeatherService) FetchAndStore(ctx context.Context, city string) (*models.WeatherSample, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}

	obs, err := s.client.FetchCurrent(ctx, city)
	if err != nil {
		s.logger.Error("Failed to fetch weather data",
			zap.String("city", city),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", utils.ErrUpstream, err)
	}

	sample := observationToSample(obs)
	if err := s.weatherRepo.InsertSample(sample); err != nil {
		s.logger.Error("Failed to store weather sample",
			zap.String("city", city),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store weather sample: %w", err)
	}

	s.logger.Info("Stored weather sample",
		zap.String("city", sample.City),
		zap.Time("observed_at", sample.ObservedAt),
		zap.Float64("temperature", sample.Temperature),
		zap.String("condition", sample.ConditionMain),
	)

	return sample, nil
}

// GetLatest returns the most recent non-deleted sample for a city
func (s *WeatherService) GetLatest(city string) (*models.WeatherSample, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}

	sample, err := s.weatherRepo.GetLatestSample(city)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest sample: %w", err)
	}
	return sample, nil
}

// GetHistory returns samples for the last N hours, newest first
func (s *WeatherService) GetHistory(city string, hours int) ([]models.WeatherSample, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}
	if err := utils.ValidateWindowHours(hours); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	samples, err := s.weatherRepo.GetSamplesByTimeRange(city, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get weather history: %w", err)
	}
	return samples, nil
}

// KnownCities lists the distinct cities with stored samples
func (s *WeatherService) KnownCities() ([]string, error) {
	cities, err := s.weatherRepo.DistinctCities()
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func observationToSample(obs *weather.Observation) *models.WeatherSample {
	return &models.WeatherSample{
		City:                 obs.City,
		ObservedAt:           obs.ObservedAt,
		Temperature:          obs.Temperature,
		FeelsLike:            obs.FeelsLike,
		TempMin:              obs.TempMin,
		TempMax:              obs.TempMax,
		Humidity:             obs.Humidity,
		Pressure:             obs.Pressure,
		WindSpeed:            obs.WindSpeed,
		WindDeg:              obs.WindDeg,
		ConditionMain:        obs.ConditionMain,
		ConditionDescription: obs.ConditionDescription,
		ConditionIcon:        obs.ConditionIcon,
		Cloudiness:           obs.Cloudiness,
		Visibility:           obs.Visibility,
		Sunrise:              obs.Sunrise,
		Sunset:               obs.Sunset,
		IngestedAt:           time.Now().UTC(),
	}
}

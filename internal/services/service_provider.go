package services

import (
	"fmt"

	"github.com/weathervane/backend/internal/config"
	"github.com/weathervane/backend/internal/db"
	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/kafka"
	"github.com/weathervane/backend/internal/utils"
	"github.com/weathervane/backend/internal/weather"
	"go.uber.org/zap"
)

// ServiceProvider wires repositories, the upstream client, the optional
// Kafka producer and all services together.
type ServiceProvider struct {
	config   *config.Config
	logger   *utils.Logger
	database *db.Database

	repoFactory *repository.RepositoryFactory
	producer    *kafka.Producer

	weatherService   *WeatherService
	dashboardService *DashboardService
	alertService     *AlertService
	cleanupService   *CleanupService
}

// NewServiceProvider creates a service provider with all services wired
func NewServiceProvider(database *db.Database, cfg *config.Config, logger *utils.Logger) (*ServiceProvider, error) {
	provider := &ServiceProvider{
		config:   cfg,
		logger:   logger,
		database: database,
	}

	provider.repoFactory = repository.NewRepositoryFactory(database.DB)

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(&cfg.Kafka, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		provider.producer = producer
		logger.Info("Kafka alert notifications enabled",
			zap.String("topic", cfg.Kafka.AlertTopic),
		)
	} else {
		logger.Info("Kafka alert notifications disabled")
	}

	client := weather.NewOpenWeatherClient(&cfg.OpenWeather)

	provider.weatherService = NewWeatherService(client, provider.repoFactory.Weather(), logger)
	provider.dashboardService = NewDashboardService(provider.repoFactory.Weather(), provider.repoFactory.Dashboard(), logger)
	provider.alertService = NewAlertService(
		provider.repoFactory.Weather(),
		provider.repoFactory.Alert(),
		provider.producer,
		&cfg.Alerts,
		cfg.Kafka.AlertTopic,
		logger,
	)
	provider.cleanupService = NewCleanupService(provider.repoFactory.Weather(), provider.repoFactory.Alert(), logger)

	return provider, nil
}

// GetWeatherService returns the weather fetch service
func (p *ServiceProvider) GetWeatherService() *WeatherService {
	return p.weatherService
}

// GetDashboardService returns the dashboard aggregation service
func (p *ServiceProvider) GetDashboardService() *DashboardService {
	return p.dashboardService
}

// GetAlertService returns the alert evaluation service
func (p *ServiceProvider) GetAlertService() *AlertService {
	return p.alertService
}

// GetCleanupService returns the retention sweep service
func (p *ServiceProvider) GetCleanupService() *CleanupService {
	return p.cleanupService
}

// Shutdown releases resources held by the provider
func (p *ServiceProvider) Shutdown() {
	if p.producer != nil {
		p.producer.Close()
	}
	p.logger.Info("Service provider shut down")
}

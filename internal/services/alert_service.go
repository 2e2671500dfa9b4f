package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/weathervane/backend/internal/config"
	"github.com/weathervane/backend/internal/db/models"
	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/kafka"
	"github.com/weathervane/backend/internal/utils"
	"go.uber.org/zap"
)

// AlertService evaluates the fixed threshold rule set against the latest
// sample for a city and records triggered alerts.
type AlertService struct {
	weatherRepo repository.WeatherRepository
	alertRepo   repository.AlertRepository
	producer    *kafka.Producer
	cfg         *config.AlertsConfig
	alertTopic  string
	logger      *utils.Logger
}

// NewAlertService creates a new alert service. The Kafka producer is
// optional; when nil, alerts are stored and logged but not published.
func NewAlertService(
	weatherRepo repository.WeatherRepository,
	alertRepo repository.AlertRepository,
	producer *kafka.Producer,
	cfg *config.AlertsConfig,
	alertTopic string,
	logger *utils.Logger,
) *AlertService {
	return &AlertService{
		weatherRepo: weatherRepo,
		alertRepo:   alertRepo,
		producer:    producer,
		cfg:         cfg,
		alertTopic:  alertTopic,
		logger:      logger.Named("alert_service"),
	}
}

// alertRule is one threshold check. evaluate returns nil when the rule does
// not fire for the given sample.
type alertRule struct {
	alertType string
	evaluate  func(sample *models.WeatherSample) *models.Alert
}

// CheckAndCreateAlerts evaluates every rule against the city's latest sample
// and returns the ids of the alerts created this run. No sample means no
// alerts and no error. Rules are isolated: one rule failing is logged and
// counted as not-triggered, the rest still run.
func (s *AlertService) CheckAndCreateAlerts(ctx context.Context, city string) ([]string, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}

	sample, err := s.weatherRepo.GetLatestSample(city)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("No weather data available for alert checking", zap.String("city", city))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read latest sample: %w", err)
	}

	createdIDs := make([]string, 0, 4)
	for _, rule := range s.rules() {
		alert := rule.evaluate(sample)
		if alert == nil {
			continue
		}

		created, err := s.createAlert(alert)
		if err != nil {
			s.logger.Error("Alert rule failed",
				zap.String("city", city),
				zap.String("alert_type", rule.alertType),
				zap.Error(err),
			)
			continue
		}
		if created {
			createdIDs = append(createdIDs, alert.AlertID)
		}
	}

	if len(createdIDs) > 0 {
		s.logger.Info("Created alerts",
			zap.String("city", city),
			zap.Int("count", len(createdIDs)),
		)
	} else {
		s.logger.Debug("No alerts triggered", zap.String("city", city))
	}

	return createdIDs, nil
}

// createAlert applies the cooldown check and, if clear, persists and
// publishes the alert. Returns false when suppressed by cooldown.
func (s *AlertService) createAlert(alert *models.Alert) (bool, error) {
	since := time.Now().UTC().Add(-s.cfg.Cooldown())
	count, err := s.alertRepo.CountSimilarSince(alert.City, alert.AlertType, since)
	if err != nil {
		return false, fmt.Errorf("cooldown check failed: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Alert suppressed by cooldown",
			zap.String("city", alert.City),
			zap.String("alert_type", alert.AlertType),
		)
		return false, nil
	}

	if err := s.alertRepo.InsertAlert(alert); err != nil {
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}

	s.logger.Warn("WEATHER ALERT",
		zap.String("city", alert.City),
		zap.String("alert_type", alert.AlertType),
		zap.String("severity", alert.Severity),
		zap.String("message", alert.Message),
	)

	s.publish(alert)
	return true, nil
}

// publish sends the alert notification to Kafka. Delivery is at-most-once by
// design; publish failures are logged and never fail the alert itself.
func (s *AlertService) publish(alert *models.Alert) {
	if s.producer == nil {
		return
	}

	err := s.producer.Produce(s.alertTopic, &kafka.Message{
		Key:       alert.City,
		Value:     alert,
		Timestamp: alert.TriggeredAt,
	})
	if err != nil {
		s.logger.Error("Failed to publish alert notification",
			zap.String("alert_id", alert.AlertID),
			zap.Error(err),
		)
	}
}

func (s *AlertService) rules() []alertRule {
	return []alertRule{
		{alertType: models.AlertTypeHighTemperature, evaluate: s.checkHighTemperature},
		{alertType: models.AlertTypeLowTemperature, evaluate: s.checkLowTemperature},
		{alertType: models.AlertTypeHighHumidity, evaluate: s.checkHighHumidity},
		{alertType: models.AlertTypeExtremeWeather, evaluate: s.checkExtremeWeather},
	}
}

func (s *AlertService) checkHighTemperature(sample *models.WeatherSample) *models.Alert {
	threshold := s.cfg.TempHighThreshold
	if sample.Temperature <= threshold {
		return nil
	}

	severity := models.SeverityWarning
	if sample.Temperature >= threshold+s.cfg.TempCriticalMargin {
		severity = models.SeverityCritical
	}

	return s.newAlert(sample, models.AlertTypeHighTemperature, severity,
		fmt.Sprintf("High temperature alert: %.1f°C (threshold: %.1f°C)", sample.Temperature, threshold),
		models.AlertCondition{
			ThresholdType:  "temperature",
			ThresholdValue: threshold,
			ActualValue:    sample.Temperature,
			Operator:       ">",
			Unit:           "°C",
		})
}

func (s *AlertService) checkLowTemperature(sample *models.WeatherSample) *models.Alert {
	threshold := s.cfg.TempLowThreshold
	if sample.Temperature >= threshold {
		return nil
	}

	severity := models.SeverityWarning
	if sample.Temperature <= threshold-s.cfg.TempCriticalMargin {
		severity = models.SeverityCritical
	}

	return s.newAlert(sample, models.AlertTypeLowTemperature, severity,
		fmt.Sprintf("Low temperature alert: %.1f°C (threshold: %.1f°C)", sample.Temperature, threshold),
		models.AlertCondition{
			ThresholdType:  "temperature",
			ThresholdValue: threshold,
			ActualValue:    sample.Temperature,
			Operator:       "<",
			Unit:           "°C",
		})
}

func (s *AlertService) checkHighHumidity(sample *models.WeatherSample) *models.Alert {
	threshold := s.cfg.HumidityThreshold
	if sample.Humidity <= threshold {
		return nil
	}

	severity := models.SeverityInfo
	if sample.Humidity >= threshold+s.cfg.HumidityWarnMargin {
		severity = models.SeverityWarning
	}

	return s.newAlert(sample, models.AlertTypeHighHumidity, severity,
		fmt.Sprintf("High humidity alert: %.0f%% (threshold: %.0f%%)", sample.Humidity, threshold),
		models.AlertCondition{
			ThresholdType:  "humidity",
			ThresholdValue: threshold,
			ActualValue:    sample.Humidity,
			Operator:       ">",
			Unit:           "%",
		})
}

func (s *AlertService) checkExtremeWeather(sample *models.WeatherSample) *models.Alert {
	extreme := false
	for _, condition := range s.cfg.ExtremeConditions {
		if sample.ConditionMain == condition {
			extreme = true
			break
		}
	}
	if !extreme {
		return nil
	}

	return s.newAlert(sample, models.AlertTypeExtremeWeather, models.SeverityCritical,
		fmt.Sprintf("Extreme weather alert: %s", sample.ConditionMain),
		models.AlertCondition{
			ThresholdType: "condition",
			ActualValue:   0,
			Operator:      "in",
		})
}

func (s *AlertService) newAlert(sample *models.WeatherSample, alertType, severity, message string, condition models.AlertCondition) *models.Alert {
	return &models.Alert{
		AlertID:     uuid.NewString(),
		City:        sample.City,
		AlertType:   alertType,
		Severity:    severity,
		Message:     message,
		TriggeredAt: time.Now().UTC(),
		Condition:   condition,
		Weather: models.AlertWeatherSnapshot{
			Temperature:   sample.Temperature,
			Humidity:      sample.Humidity,
			WindSpeed:     sample.WindSpeed,
			ConditionMain: sample.ConditionMain,
			ObservedAt:    sample.ObservedAt,
		},
	}
}

// Acknowledge marks an alert as acknowledged. Acknowledging an alert that is
// already acknowledged succeeds without changing the stored record.
func (s *AlertService) Acknowledge(alertID, acknowledgedBy string) error {
	if alertID == "" {
		return fmt.Errorf("%w: alert id is required", utils.ErrValidation)
	}

	if err := s.alertRepo.Acknowledge(alertID, acknowledgedBy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.ErrNotFound
		}
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	s.logger.Info("Acknowledged alert",
		zap.String("alert_id", alertID),
		zap.String("acknowledged_by", acknowledgedBy),
	)
	return nil
}

// GetActiveAlerts returns unacknowledged alerts, newest first. Empty city
// means all cities.
func (s *AlertService) GetActiveAlerts(city string, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	alerts, err := s.alertRepo.GetActiveAlerts(city, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get active alerts: %w", err)
	}
	return alerts, nil
}

// GetRecentAlerts returns alerts triggered within the last N hours for a city
func (s *AlertService) GetRecentAlerts(city string, hours, limit int) ([]models.Alert, error) {
	if err := utils.ValidateCity(city); err != nil {
		return nil, err
	}
	if err := utils.ValidateWindowHours(hours); err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	alerts, err := s.alertRepo.GetRecentAlerts(city, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent alerts: %w", err)
	}
	return alerts, nil
}

// GetStatistics returns alert counts over the given window. Empty city means
// all cities.
func (s *AlertService) GetStatistics(city string, hours int) (*models.AlertStatistics, error) {
	if err := utils.ValidateWindowHours(hours); err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	stats, err := s.alertRepo.GetStatistics(city, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert statistics: %w", err)
	}
	return stats, nil
}

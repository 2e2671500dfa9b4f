package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/weathervane/backend/internal/db/models"
	"gorm.io/gorm"
)

// AlertRepository defines operations for the alert log
type AlertRepository interface {
	Repository
	InsertAlert(alert *models.Alert) error
	GetByAlertID(alertID string) (*models.Alert, error)
	GetActiveAlerts(city string, limit int) ([]models.Alert, error)
	GetRecentAlerts(city string, since time.Time, limit int) ([]models.Alert, error)
	CountSimilarSince(city, alertType string, since time.Time) (int64, error)
	Acknowledge(alertID, acknowledgedBy string) error
	GetStatistics(city string, since time.Time) (*models.AlertStatistics, error)
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// alertRepository implements AlertRepository
type alertRepository struct {
	BaseRepository
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// InsertAlert stores one triggered alert
func (r *alertRepository) InsertAlert(alert *models.Alert) error {
	record, err := toAlertRecord(alert)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return r.handleError(r.GetDB().Create(record).Error)
}

// GetByAlertID retrieves one alert by its public identifier
func (r *alertRepository) GetByAlertID(alertID string) (*models.Alert, error) {
	var record models.AlertRecord
	err := r.GetDB().Where("alert_id = ?", alertID).First(&record).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	return fromAlertRecord(&record)
}

// GetActiveAlerts retrieves unacknowledged alerts, newest first
func (r *alertRepository) GetActiveAlerts(city string, limit int) ([]models.Alert, error) {
	var records []models.AlertRecord

	query := r.GetDB().Where("acknowledged = ?", false)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("triggered_at desc").Find(&records).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	return fromAlertRecords(records)
}

// GetRecentAlerts retrieves alerts triggered since the given instant,
// newest first
func (r *alertRepository) GetRecentAlerts(city string, since time.Time, limit int) ([]models.Alert, error) {
	var records []models.AlertRecord

	query := r.GetDB().Where("city = ? AND triggered_at >= ?", city, since)
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("triggered_at desc").Find(&records).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	return fromAlertRecords(records)
}

// CountSimilarSince counts alerts of a given (city, type) triggered since the
// given instant. Used for the cooldown check.
func (r *alertRepository) CountSimilarSince(city, alertType string, since time.Time) (int64, error) {
	var count int64
	err := r.GetDB().Model(&models.AlertRecord{}).
		Where("city = ? AND alert_type = ? AND triggered_at >= ?", city, alertType, since).
		Count(&count).Error
	if err != nil {
		return 0, r.handleError(err)
	}

	return count, nil
}

// Acknowledge marks an alert acknowledged. Acknowledging an already
// acknowledged alert is a no-op success and leaves the original
// acknowledgment untouched.
func (r *alertRepository) Acknowledge(alertID, acknowledgedBy string) error {
	var record models.AlertRecord
	err := r.GetDB().Where("alert_id = ?", alertID).First(&record).Error
	if err != nil {
		return r.handleError(err)
	}

	if record.Acknowledged {
		return nil
	}

	now := time.Now().UTC()
	err = r.GetDB().Model(&models.AlertRecord{}).
		Where("alert_id = ? AND acknowledged = ?", alertID, false).
		Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_at": now,
			"acknowledged_by": acknowledgedBy,
		}).Error

	return r.handleError(err)
}

// GetStatistics aggregates alert counts for a city. An empty city spans all
// cities; "recent" counts alerts since the given instant.
func (r *alertRepository) GetStatistics(city string, since time.Time) (*models.AlertStatistics, error) {
	base := r.GetDB().Model(&models.AlertRecord{})
	if city != "" {
		base = base.Where("city = ?", city)
	}

	stats := &models.AlertStatistics{
		BySeverity: make(map[string]int64),
		ByType:     make(map[string]int64),
	}

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalAlerts).Error; err != nil {
		return nil, r.handleError(err)
	}

	if err := base.Session(&gorm.Session{}).
		Where("acknowledged = ?", false).
		Count(&stats.ActiveAlerts).Error; err != nil {
		return nil, r.handleError(err)
	}

	if err := base.Session(&gorm.Session{}).
		Where("triggered_at >= ?", since).
		Count(&stats.RecentAlerts).Error; err != nil {
		return nil, r.handleError(err)
	}

	var severityRows []struct {
		Severity string
		Count    int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("severity, count(*) as count").
		Group("severity").
		Scan(&severityRows).Error; err != nil {
		return nil, r.handleError(err)
	}
	for _, row := range severityRows {
		stats.BySeverity[row.Severity] = row.Count
	}

	var typeRows []struct {
		AlertType string
		Count     int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("alert_type, count(*) as count").
		Group("alert_type").
		Scan(&typeRows).Error; err != nil {
		return nil, r.handleError(err)
	}
	for _, row := range typeRows {
		stats.ByType[row.AlertType] = row.Count
	}

	return stats, nil
}

// DeleteOlderThan permanently removes alerts triggered before cutoff
func (r *alertRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.GetDB().Where("triggered_at < ?", cutoff).Delete(&models.AlertRecord{})
	if result.Error != nil {
		return 0, r.handleError(result.Error)
	}

	return result.RowsAffected, nil
}

// toAlertRecord serializes the condition and weather snapshots for storage
func toAlertRecord(alert *models.Alert) (*models.AlertRecord, error) {
	conditionData, err := json.Marshal(alert.Condition)
	if err != nil {
		return nil, err
	}

	weatherData, err := json.Marshal(alert.Weather)
	if err != nil {
		return nil, err
	}

	return &models.AlertRecord{
		AlertID:        alert.AlertID,
		City:           alert.City,
		AlertType:      alert.AlertType,
		Severity:       alert.Severity,
		Message:        alert.Message,
		TriggeredAt:    alert.TriggeredAt,
		ConditionJSON:  string(conditionData),
		WeatherJSON:    string(weatherData),
		Acknowledged:   alert.Acknowledged,
		AcknowledgedAt: alert.AcknowledgedAt,
		AcknowledgedBy: alert.AcknowledgedBy,
	}, nil
}

// fromAlertRecord deserializes a stored alert, validating shape on read
func fromAlertRecord(record *models.AlertRecord) (*models.Alert, error) {
	alert := &models.Alert{
		AlertID:        record.AlertID,
		City:           record.City,
		AlertType:      record.AlertType,
		Severity:       record.Severity,
		Message:        record.Message,
		TriggeredAt:    record.TriggeredAt,
		Acknowledged:   record.Acknowledged,
		AcknowledgedAt: record.AcknowledgedAt,
		AcknowledgedBy: record.AcknowledgedBy,
	}

	if record.ConditionJSON != "" {
		if err := json.Unmarshal([]byte(record.ConditionJSON), &alert.Condition); err != nil {
			return nil, fmt.Errorf("%w: stored alert condition is malformed: %v", ErrDatabase, err)
		}
	}
	if record.WeatherJSON != "" {
		if err := json.Unmarshal([]byte(record.WeatherJSON), &alert.Weather); err != nil {
			return nil, fmt.Errorf("%w: stored alert snapshot is malformed: %v", ErrDatabase, err)
		}
	}

	return alert, nil
}

func fromAlertRecords(records []models.AlertRecord) ([]models.Alert, error) {
	alerts := make([]models.Alert, 0, len(records))
	for i := range records {
		alert, err := fromAlertRecord(&records[i])
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, nil
}

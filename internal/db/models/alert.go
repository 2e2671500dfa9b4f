package models

import (
	"time"
)

// Alert types for the fixed rule set
const (
	AlertTypeHighTemperature = "high_temperature"
	AlertTypeLowTemperature  = "low_temperature"
	AlertTypeHighHumidity    = "high_humidity"
	AlertTypeExtremeWeather  = "extreme_weather"
)

// Alert severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// AlertCondition captures the threshold comparison that triggered an alert
type AlertCondition struct {
	ThresholdType  string  `json:"threshold_type"`
	ThresholdValue float64 `json:"threshold_value"`
	ActualValue    float64 `json:"actual_value"`
	Operator       string  `json:"operator"`
	Unit           string  `json:"unit,omitempty"`
}

// AlertWeatherSnapshot captures the reading that triggered an alert
type AlertWeatherSnapshot struct {
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	ConditionMain string    `json:"condition_main"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Alert is one triggered alert instance
type Alert struct {
	AlertID        string               `json:"alert_id"`
	City           string               `json:"city"`
	AlertType      string               `json:"alert_type"`
	Severity       string               `json:"severity"`
	Message        string               `json:"message"`
	TriggeredAt    time.Time            `json:"triggered_at"`
	Condition      AlertCondition       `json:"condition"`
	Weather        AlertWeatherSnapshot `json:"weather"`
	Acknowledged   bool                 `json:"acknowledged"`
	AcknowledgedAt *time.Time           `json:"acknowledged_at,omitempty"`
	AcknowledgedBy string               `json:"acknowledged_by,omitempty"`
}

// AlertRecord is the persisted form of Alert
type AlertRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AlertID        string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"alert_id"`
	City           string     `gorm:"type:varchar(128);not null;index:idx_alerts_city_triggered;index:idx_alerts_city_type_triggered" json:"city"`
	AlertType      string     `gorm:"type:varchar(40);not null;index:idx_alerts_city_type_triggered" json:"alert_type"`
	Severity       string     `gorm:"type:varchar(20);not null" json:"severity"`
	Message        string     `json:"message"`
	TriggeredAt    time.Time  `gorm:"type:timestamptz;not null;index:idx_alerts_city_triggered;index:idx_alerts_city_type_triggered" json:"triggered_at"`
	ConditionJSON  string     `gorm:"type:jsonb" json:"condition_json"`
	WeatherJSON    string     `gorm:"type:jsonb" json:"weather_json"`
	Acknowledged   bool       `gorm:"default:false;index" json:"acknowledged"`
	AcknowledgedAt *time.Time `gorm:"type:timestamptz" json:"acknowledged_at,omitempty"`
	AcknowledgedBy string     `gorm:"type:varchar(128)" json:"acknowledged_by,omitempty"`
}

// TableName overrides the table name for AlertRecord
func (AlertRecord) TableName() string {
	return "alerts"
}

// AlertStatistics is the aggregate view returned by the statistics query
type AlertStatistics struct {
	TotalAlerts  int64            `json:"total_alerts"`
	ActiveAlerts int64            `json:"active_alerts"`
	RecentAlerts int64            `json:"recent_alerts"`
	BySeverity   map[string]int64 `json:"by_severity"`
	ByType       map[string]int64 `json:"by_type"`
}

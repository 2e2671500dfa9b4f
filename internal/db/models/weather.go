package models

import (
	"time"
)

// WeatherSample represents one raw weather reading for a city.
// Samples are an append-only log; the retention sweeper is the only writer
// after insert.
type WeatherSample struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	City                 string     `gorm:"type:varchar(128);not null;index:idx_samples_city_observed" json:"city"`
	ObservedAt           time.Time  `gorm:"type:timestamptz;not null;index:idx_samples_city_observed" json:"observed_at"`
	Temperature          float64    `json:"temperature"`
	FeelsLike            float64    `json:"feels_like"`
	TempMin              float64    `json:"temp_min"`
	TempMax              float64    `json:"temp_max"`
	Humidity             float64    `json:"humidity"`
	Pressure             float64    `json:"pressure"`
	WindSpeed            float64    `json:"wind_speed"`
	WindDeg              int        `json:"wind_deg"`
	ConditionMain        string     `gorm:"type:varchar(64)" json:"condition_main"`
	ConditionDescription string     `gorm:"type:varchar(255)" json:"condition_description"`
	ConditionIcon        string     `gorm:"type:varchar(16)" json:"condition_icon"`
	Cloudiness           int        `json:"cloudiness"`
	Visibility           int        `json:"visibility"`
	Sunrise              *time.Time `gorm:"type:timestamptz" json:"sunrise,omitempty"`
	Sunset               *time.Time `gorm:"type:timestamptz" json:"sunset,omitempty"`
	Deleted              bool       `gorm:"default:false;index" json:"deleted"`
	IngestedAt           time.Time  `gorm:"type:timestamptz;not null" json:"ingested_at"`
}

// TableName overrides the table name for WeatherSample
func (WeatherSample) TableName() string {
	return "weather_samples"
}

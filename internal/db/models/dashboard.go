package models

import (
	"time"
)

// CurrentWeather is the display copy of the most recent sample
type CurrentWeather struct {
	Temperature          float64    `json:"temperature"`
	FeelsLike            float64    `json:"feels_like"`
	Humidity             float64    `json:"humidity"`
	Pressure             float64    `json:"pressure"`
	WindSpeed            float64    `json:"wind_speed"`
	WindDeg              int        `json:"wind_deg"`
	ConditionMain        string     `json:"condition_main"`
	ConditionDescription string     `json:"condition_description"`
	ConditionIcon        string     `json:"condition_icon"`
	Cloudiness           int        `json:"cloudiness"`
	Visibility           int        `json:"visibility"`
	ObservedAt           time.Time  `json:"observed_at"`
	Sunrise              *time.Time `json:"sunrise,omitempty"`
	Sunset               *time.Time `json:"sunset,omitempty"`
}

// TodayStats aggregates the current UTC calendar day
type TodayStats struct {
	TempAvg      float64 `json:"temp_avg"`
	TempMin      float64 `json:"temp_min"`
	TempMax      float64 `json:"temp_max"`
	HumidityAvg  float64 `json:"humidity_avg"`
	HumidityMin  float64 `json:"humidity_min"`
	HumidityMax  float64 `json:"humidity_max"`
	PressureAvg  float64 `json:"pressure_avg"`
	WindSpeedAvg float64 `json:"wind_speed_avg"`
	SampleCount  int     `json:"sample_count"`
}

// HourlyPoint is one bucket of the hourly trend. Empty hours are omitted,
// so the trend is sparse.
type HourlyPoint struct {
	Hour        time.Time `json:"hour"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Condition   string    `json:"condition"`
}

// DailyPoint is one bucket of the daily trend
type DailyPoint struct {
	Date        string  `json:"date"`
	TempAvg     float64 `json:"temp_avg"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	HumidityAvg float64 `json:"humidity_avg"`
	Condition   string  `json:"condition"`
	SampleCount int     `json:"sample_count"`
}

// DashboardSummary is the pre-computed rollup served to the UI.
// Exactly one live summary exists per city.
type DashboardSummary struct {
	City                  string          `json:"city"`
	SummaryType           string          `json:"summary_type"`
	GeneratedAt           time.Time       `json:"generated_at"`
	Current               *CurrentWeather `json:"current,omitempty"`
	TodayStats            TodayStats      `json:"today_stats"`
	HourlyTrend           []HourlyPoint   `json:"hourly_trend"`
	DailyTrend            []DailyPoint    `json:"daily_trend"`
	ConditionDistribution map[string]int  `json:"condition_distribution"`
}

// DashboardSummaryRecord is the persisted form of DashboardSummary. The
// nested documents serialize to JSON at the repository boundary and are
// validated by unmarshalling on read.
type DashboardSummaryRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	City             string    `gorm:"type:varchar(128);not null;index" json:"city"`
	SummaryType      string    `gorm:"type:varchar(20);not null" json:"summary_type"`
	GeneratedAt      time.Time `gorm:"type:timestamptz;not null;index" json:"generated_at"`
	CurrentJSON      string    `gorm:"type:jsonb" json:"current_json,omitempty"`
	TodayStatsJSON   string    `gorm:"type:jsonb" json:"today_stats_json"`
	HourlyTrendJSON  string    `gorm:"type:jsonb" json:"hourly_trend_json"`
	DailyTrendJSON   string    `gorm:"type:jsonb" json:"daily_trend_json"`
	DistributionJSON string    `gorm:"type:jsonb" json:"distribution_json"`
}

// TableName overrides the table name for DashboardSummaryRecord
func (DashboardSummaryRecord) TableName() string {
	return "dashboard_summaries"
}

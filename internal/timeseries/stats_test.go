package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/weathervane/backend/internal/db/models"
)

func TestStats(t *testing.T) {
	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

	samples := []models.WeatherSample{
		{ObservedAt: base, Temperature: 18, Humidity: 70, Pressure: 1010, WindSpeed: 2},
		{ObservedAt: base.Add(4 * time.Hour), Temperature: 30, Humidity: 50, Pressure: 1008, WindSpeed: 4},
		{ObservedAt: base.Add(8 * time.Hour), Temperature: 24, Humidity: 60, Pressure: 1012, WindSpeed: 3},
	}

	stats := Stats(samples)

	assert.Equal(t, 18.0, stats.TempMin)
	assert.Equal(t, 30.0, stats.TempMax)
	assert.Equal(t, 24.0, stats.TempAvg)
	assert.Equal(t, 50.0, stats.HumidityMin)
	assert.Equal(t, 70.0, stats.HumidityMax)
	assert.Equal(t, 60.0, stats.HumidityAvg)
	assert.Equal(t, 1010.0, stats.PressureAvg)
	assert.Equal(t, 3.0, stats.WindSpeedAvg)
	assert.Equal(t, 3, stats.SampleCount)
}

func TestStatsEmpty(t *testing.T) {
	stats := Stats(nil)
	assert.Equal(t, models.TodayStats{}, stats)
}

func TestStatsSingleSample(t *testing.T) {
	samples := []models.WeatherSample{
		{Temperature: 21.5, Humidity: 55, Pressure: 1013, WindSpeed: 1.2},
	}

	stats := Stats(samples)
	assert.Equal(t, 21.5, stats.TempMin)
	assert.Equal(t, 21.5, stats.TempMax)
	assert.Equal(t, 21.5, stats.TempAvg)
	assert.Equal(t, 1, stats.SampleCount)
}

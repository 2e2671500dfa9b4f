package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/db/models"
	"github.com/weathervane/backend/internal/db/repository"
	"github.com/weathervane/backend/internal/utils"
)

func newAlertService(t *testing.T, repos *repository.RepositoryFactory) *AlertService {
	t.Helper()
	return NewAlertService(repos.Weather(), repos.Alert(), nil, testAlertsConfig(), "", utils.NewNopLogger())
}

func storeSample(t *testing.T, repos *repository.RepositoryFactory, city string, observedAt time.Time, temp, humidity float64, condition string) {
	t.Helper()
	require.NoError(t, repos.Weather().InsertSample(&models.WeatherSample{
		City:          city,
		ObservedAt:    observedAt,
		Temperature:   temp,
		Humidity:      humidity,
		Pressure:      1008,
		WindSpeed:     3,
		ConditionMain: condition,
		IngestedAt:    time.Now().UTC(),
	}))
}

func TestHighTemperatureAlert(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)
	now := time.Now().UTC()

	// Two readings above threshold in quick succession
	storeSample(t, repos, "Pune", now.Add(-5*time.Minute), 36, 40, "Clear")
	storeSample(t, repos, "Pune", now, 37, 40, "Clear")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlertTypeHighTemperature, alert.AlertType)
	assert.Equal(t, models.SeverityWarning, alert.Severity)
	assert.Equal(t, 37.0, alert.Condition.ActualValue)
	assert.Equal(t, 35.0, alert.Condition.ThresholdValue)
	assert.Equal(t, "High temperature alert: 37.0°C (threshold: 35.0°C)", alert.Message)
	assert.Equal(t, 37.0, alert.Weather.Temperature)

	// Immediate re-run is inside the cooldown window
	ids, err = service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCooldownExpiry(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)
	now := time.Now().UTC()

	storeSample(t, repos, "Pune", now, 37, 40, "Clear")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	// Age the stored alert past the cooldown window
	err = repos.Alert().GetDB().Model(&models.AlertRecord{}).
		Where("alert_id = ?", ids[0]).
		Update("triggered_at", now.Add(-61*time.Minute)).Error
	require.NoError(t, err)

	ids, err = service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestCriticalSeverityBeyondMargin(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 41, 40, "Clear")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
}

func TestLowTemperatureAlert(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Shimla", time.Now().UTC(), 2, 50, "Clear")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Shimla")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlertTypeLowTemperature, alert.AlertType)
	assert.Equal(t, models.SeverityWarning, alert.Severity)
}

func TestHighHumidityAlert(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 28, 85, "Rain")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlertTypeHighHumidity, alert.AlertType)
	assert.Equal(t, models.SeverityInfo, alert.Severity)
}

func TestExtremeWeatherAlert(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 25, 70, "Thunderstorm")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.AlertTypeExtremeWeather, alert.AlertType)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Equal(t, "Extreme weather alert: Thunderstorm", alert.Message)
}

func TestMultipleRulesFireIndependently(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	// Hot, humid and stormy at once
	storeSample(t, repos, "Pune", time.Now().UTC(), 37, 92, "Storm")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestNoSampleNoAlerts(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNormalConditionsNoAlerts(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 25, 60, "Clear")

	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAcknowledgeAlert(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 37, 40, "Clear")
	ids, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	require.NoError(t, service.Acknowledge(ids[0], "operator-1"))
	// Repeat acknowledge succeeds
	require.NoError(t, service.Acknowledge(ids[0], "operator-2"))

	alert, err := repos.Alert().GetByAlertID(ids[0])
	require.NoError(t, err)
	assert.True(t, alert.Acknowledged)
	assert.Equal(t, "operator-1", alert.AcknowledgedBy)
}

func TestAcknowledgeUnknownAlertID(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	err := service.Acknowledge("does-not-exist", "operator-1")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestGetStatisticsWindow(t *testing.T) {
	repos := setupTestRepos(t)
	service := newAlertService(t, repos)

	storeSample(t, repos, "Pune", time.Now().UTC(), 37, 40, "Clear")
	_, err := service.CheckAndCreateAlerts(context.Background(), "Pune")
	require.NoError(t, err)

	stats, err := service.GetStatistics("Pune", 24)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalAlerts)
	assert.Equal(t, int64(1), stats.ActiveAlerts)
	assert.Equal(t, int64(1), stats.RecentAlerts)
}

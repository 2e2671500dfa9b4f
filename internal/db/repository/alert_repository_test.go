package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/db/models"
)

func newTestAlert(city, alertType, severity string, triggeredAt time.Time) *models.Alert {
	return &models.Alert{
		AlertID:     uuid.NewString(),
		City:        city,
		AlertType:   alertType,
		Severity:    severity,
		Message:     "High temperature alert: 37.0°C (threshold: 35.0°C)",
		TriggeredAt: triggeredAt,
		Condition: models.AlertCondition{
			ThresholdType:  "temperature",
			ThresholdValue: 35,
			ActualValue:    37,
			Operator:       ">",
			Unit:           "°C",
		},
		Weather: models.AlertWeatherSnapshot{
			Temperature:   37,
			Humidity:      40,
			WindSpeed:     2,
			ConditionMain: "Clear",
			ObservedAt:    triggeredAt,
		},
	}
}

func TestInsertAndGetAlert(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	alert := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now)
	require.NoError(t, repo.InsertAlert(alert))

	got, err := repo.GetByAlertID(alert.AlertID)
	require.NoError(t, err)
	assert.Equal(t, alert.City, got.City)
	assert.Equal(t, alert.AlertType, got.AlertType)
	assert.Equal(t, alert.Message, got.Message)
	assert.Equal(t, alert.Condition, got.Condition)
	assert.Equal(t, 37.0, got.Weather.Temperature)
	assert.False(t, got.Acknowledged)
}

func TestGetByAlertIDNotFound(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))

	_, err := repo.GetByAlertID(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcknowledgeIdempotent(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	alert := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now)
	require.NoError(t, repo.InsertAlert(alert))

	require.NoError(t, repo.Acknowledge(alert.AlertID, "operator-1"))

	first, err := repo.GetByAlertID(alert.AlertID)
	require.NoError(t, err)
	require.True(t, first.Acknowledged)
	require.NotNil(t, first.AcknowledgedAt)
	assert.Equal(t, "operator-1", first.AcknowledgedBy)

	// Second acknowledge succeeds and changes nothing
	require.NoError(t, repo.Acknowledge(alert.AlertID, "operator-2"))

	second, err := repo.GetByAlertID(alert.AlertID)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", second.AcknowledgedBy)
	assert.True(t, first.AcknowledgedAt.Equal(*second.AcknowledgedAt))
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))

	err := repo.Acknowledge(uuid.NewString(), "operator-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActiveAlerts(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	older := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now.Add(-2*time.Hour))
	newer := newTestAlert("Pune", models.AlertTypeHighHumidity, models.SeverityInfo, now)
	acked := newTestAlert("Pune", models.AlertTypeLowTemperature, models.SeverityWarning, now.Add(-time.Hour))
	other := newTestAlert("Mumbai", models.AlertTypeHighTemperature, models.SeverityCritical, now)

	for _, a := range []*models.Alert{older, newer, acked, other} {
		require.NoError(t, repo.InsertAlert(a))
	}
	require.NoError(t, repo.Acknowledge(acked.AlertID, "operator-1"))

	alerts, err := repo.GetActiveAlerts("Pune", 50)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	// Newest first, acknowledged excluded
	assert.Equal(t, newer.AlertID, alerts[0].AlertID)
	assert.Equal(t, older.AlertID, alerts[1].AlertID)

	// Empty city returns all cities
	all, err := repo.GetActiveAlerts("", 50)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCountSimilarSince(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	inside := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now.Add(-30*time.Minute))
	outside := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now.Add(-2*time.Hour))
	otherType := newTestAlert("Pune", models.AlertTypeHighHumidity, models.SeverityInfo, now.Add(-30*time.Minute))

	for _, a := range []*models.Alert{inside, outside, otherType} {
		require.NoError(t, repo.InsertAlert(a))
	}

	count, err := repo.CountSimilarSince("Pune", models.AlertTypeHighTemperature, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetStatistics(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	recent := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityCritical, now.Add(-time.Hour))
	old := newTestAlert("Pune", models.AlertTypeHighHumidity, models.SeverityInfo, now.Add(-48*time.Hour))
	acked := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now.Add(-3*time.Hour))

	for _, a := range []*models.Alert{recent, old, acked} {
		require.NoError(t, repo.InsertAlert(a))
	}
	require.NoError(t, repo.Acknowledge(acked.AlertID, "operator-1"))

	stats, err := repo.GetStatistics("Pune", now.Add(-24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalAlerts)
	assert.Equal(t, int64(2), stats.ActiveAlerts)
	assert.Equal(t, int64(2), stats.RecentAlerts)
	assert.Equal(t, int64(2), stats.ByType[models.AlertTypeHighTemperature])
	assert.Equal(t, int64(1), stats.ByType[models.AlertTypeHighHumidity])
	assert.Equal(t, int64(1), stats.BySeverity[models.SeverityCritical])
	assert.Equal(t, int64(1), stats.BySeverity[models.SeverityWarning])
	assert.Equal(t, int64(1), stats.BySeverity[models.SeverityInfo])
}

func TestDeleteOlderThan(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t))
	now := time.Now().UTC()

	old := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now.AddDate(0, 0, -40))
	fresh := newTestAlert("Pune", models.AlertTypeHighTemperature, models.SeverityWarning, now)

	require.NoError(t, repo.InsertAlert(old))
	require.NoError(t, repo.InsertAlert(fresh))

	count, err := repo.DeleteOlderThan(now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.GetByAlertID(old.AlertID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByAlertID(fresh.AlertID)
	assert.NoError(t, err)
}

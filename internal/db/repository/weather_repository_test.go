package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/db/models"
)

func insertSampleAt(t *testing.T, repo WeatherRepository, city string, observedAt time.Time, temp float64) *models.WeatherSample {
	t.Helper()

	sample := &models.WeatherSample{
		City:          city,
		ObservedAt:    observedAt,
		Temperature:   temp,
		Humidity:      60,
		Pressure:      1010,
		WindSpeed:     3,
		ConditionMain: "Clear",
		IngestedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.InsertSample(sample))
	return sample
}

func TestGetLatestSample(t *testing.T) {
	repo := NewWeatherRepository(setupTestDB(t))
	now := time.Now().UTC()

	insertSampleAt(t, repo, "Pune", now.Add(-2*time.Hour), 20)
	insertSampleAt(t, repo, "Pune", now.Add(-1*time.Hour), 22)
	insertSampleAt(t, repo, "Mumbai", now, 30)

	sample, err := repo.GetLatestSample("Pune")
	require.NoError(t, err)
	assert.Equal(t, 22.0, sample.Temperature)
	assert.Equal(t, "Pune", sample.City)
}

func TestGetLatestSampleNotFound(t *testing.T) {
	repo := NewWeatherRepository(setupTestDB(t))

	_, err := repo.GetLatestSample("Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetLatestSampleSkipsDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeatherRepository(db)
	now := time.Now().UTC()

	insertSampleAt(t, repo, "Pune", now.Add(-2*time.Hour), 20)
	newest := insertSampleAt(t, repo, "Pune", now, 25)

	require.NoError(t, db.Model(newest).Update("deleted", true).Error)

	sample, err := repo.GetLatestSample("Pune")
	require.NoError(t, err)
	assert.Equal(t, 20.0, sample.Temperature)
}

func TestGetSamplesByTimeRange(t *testing.T) {
	repo := NewWeatherRepository(setupTestDB(t))
	now := time.Now().UTC()

	insertSampleAt(t, repo, "Pune", now.Add(-30*time.Hour), 18)
	insertSampleAt(t, repo, "Pune", now.Add(-2*time.Hour), 21)
	insertSampleAt(t, repo, "Pune", now.Add(-1*time.Hour), 23)

	samples, err := repo.GetSamplesByTimeRange("Pune", now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	// Newest first
	assert.Equal(t, 23.0, samples[0].Temperature)
	assert.Equal(t, 21.0, samples[1].Temperature)
}

func TestGetConditionDistribution(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeatherRepository(db)
	now := time.Now().UTC()

	for i, condition := range []string{"Clear", "Clear", "Rain"} {
		sample := insertSampleAt(t, repo, "Pune", now.Add(-time.Duration(i)*time.Hour), 20)
		require.NoError(t, db.Model(sample).Update("condition_main", condition).Error)
	}

	distribution, err := repo.GetConditionDistribution("Pune", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Clear": 2, "Rain": 1}, distribution)
}

func TestSoftDeleteBoundary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeatherRepository(db)
	cutoff := time.Now().UTC().AddDate(0, 0, -2)

	older := insertSampleAt(t, repo, "Pune", cutoff.Add(-time.Second), 20)
	exact := insertSampleAt(t, repo, "Pune", cutoff, 21)
	newer := insertSampleAt(t, repo, "Pune", cutoff.Add(time.Second), 22)
	// A fourth recent sample so none of the above is the keep-last row
	insertSampleAt(t, repo, "Pune", time.Now().UTC(), 23)

	count, err := repo.SoftDeleteOldSamples("Pune", cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var rows []models.WeatherSample
	require.NoError(t, db.Find(&rows, "id IN ?", []uint{older.ID, exact.ID, newer.ID}).Error)
	for _, row := range rows {
		switch row.ID {
		case older.ID:
			assert.True(t, row.Deleted, "sample strictly older than cutoff must be swept")
		case exact.ID:
			assert.False(t, row.Deleted, "sample exactly at cutoff must be kept")
		case newer.ID:
			assert.False(t, row.Deleted)
		}
	}
}

func TestSoftDeleteKeepsLastSamplePerCity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeatherRepository(db)
	cutoff := time.Now().UTC().AddDate(0, 0, -2)

	// Both samples predate the cutoff; the city has gone quiet
	insertSampleAt(t, repo, "Pune", cutoff.Add(-48*time.Hour), 19)
	last := insertSampleAt(t, repo, "Pune", cutoff.Add(-24*time.Hour), 20)

	count, err := repo.SoftDeleteOldSamples("Pune", cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var kept models.WeatherSample
	require.NoError(t, db.First(&kept, last.ID).Error)
	assert.False(t, kept.Deleted, "the newest sample of a city must survive the sweep")
}

func TestSoftDeleteAllCities(t *testing.T) {
	repo := NewWeatherRepository(setupTestDB(t))
	cutoff := time.Now().UTC().AddDate(0, 0, -2)

	insertSampleAt(t, repo, "Pune", cutoff.Add(-time.Hour), 20)
	insertSampleAt(t, repo, "Pune", time.Now().UTC(), 22)
	insertSampleAt(t, repo, "Mumbai", cutoff.Add(-time.Hour), 28)
	insertSampleAt(t, repo, "Mumbai", time.Now().UTC(), 30)

	count, err := repo.SoftDeleteOldSamples("", cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHardDeleteOldSamples(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWeatherRepository(db)
	cutoff := time.Now().UTC().AddDate(0, 0, -3)

	insertSampleAt(t, repo, "Pune", cutoff.Add(-time.Hour), 20)
	insertSampleAt(t, repo, "Pune", time.Now().UTC(), 22)

	count, err := repo.HardDeleteOldSamples(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var remaining int64
	require.NoError(t, db.Model(&models.WeatherSample{}).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestDistinctCities(t *testing.T) {
	repo := NewWeatherRepository(setupTestDB(t))
	now := time.Now().UTC()

	insertSampleAt(t, repo, "Pune", now, 20)
	insertSampleAt(t, repo, "Pune", now.Add(-time.Hour), 21)
	insertSampleAt(t, repo, "Mumbai", now, 30)

	cities, err := repo.DistinctCities()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pune", "Mumbai"}, cities)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/utils"
	"github.com/weathervane/backend/internal/weather"
)

// fakeClient returns a canned observation or error
type fakeClient struct {
	obs *weather.Observation
	err error
}

func (f *fakeClient) FetchCurrent(ctx context.Context, city string) (*weather.Observation, error) {
	if f.err != nil {
		return nil, f.err
	}
	obs := *f.obs
	obs.City = city
	return &obs, nil
}

func TestFetchAndStore(t *testing.T) {
	repos := setupTestRepos(t)
	observedAt := time.Now().UTC().Add(-time.Minute)

	client := &fakeClient{obs: &weather.Observation{
		ObservedAt:    observedAt,
		Temperature:   28.4,
		Humidity:      74,
		Pressure:      1006,
		WindSpeed:     4.6,
		ConditionMain: "Clouds",
	}}
	service := NewWeatherService(client, repos.Weather(), utils.NewNopLogger())

	sample, err := service.FetchAndStore(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", sample.City)
	assert.Equal(t, 28.4, sample.Temperature)
	assert.False(t, sample.IngestedAt.IsZero())

	stored, err := repos.Weather().GetLatestSample("Pune")
	require.NoError(t, err)
	assert.Equal(t, 28.4, stored.Temperature)
	assert.True(t, observedAt.Equal(stored.ObservedAt.UTC()))
}

func TestFetchAndStoreUpstreamFailure(t *testing.T) {
	repos := setupTestRepos(t)
	client := &fakeClient{err: errors.New("connection refused")}
	service := NewWeatherService(client, repos.Weather(), utils.NewNopLogger())

	_, err := service.FetchAndStore(context.Background(), "Pune")
	assert.ErrorIs(t, err, utils.ErrUpstream)

	// Nothing was written
	_, err = repos.Weather().GetLatestSample("Pune")
	assert.Error(t, err)
}

func TestFetchAndStoreInvalidCity(t *testing.T) {
	repos := setupTestRepos(t)
	service := NewWeatherService(&fakeClient{}, repos.Weather(), utils.NewNopLogger())

	_, err := service.FetchAndStore(context.Background(), "")
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestGetHistoryWindow(t *testing.T) {
	repos := setupTestRepos(t)
	service := NewWeatherService(&fakeClient{}, repos.Weather(), utils.NewNopLogger())
	now := time.Now().UTC()

	storeSample(t, repos, "Pune", now.Add(-30*time.Hour), 20, 60, "Clear")
	storeSample(t, repos, "Pune", now.Add(-2*time.Hour), 24, 55, "Clear")

	samples, err := service.GetHistory("Pune", 24)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 24.0, samples[0].Temperature)
}

func TestGetHistoryInvalidHours(t *testing.T) {
	repos := setupTestRepos(t)
	service := NewWeatherService(&fakeClient{}, repos.Weather(), utils.NewNopLogger())

	_, err := service.GetHistory("Pune", 0)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestKnownCities(t *testing.T) {
	repos := setupTestRepos(t)
	service := NewWeatherService(&fakeClient{}, repos.Weather(), utils.NewNopLogger())
	now := time.Now().UTC()

	storeSample(t, repos, "Pune", now, 28, 60, "Clear")
	storeSample(t, repos, "Mumbai", now, 31, 70, "Haze")

	cities, err := service.KnownCities()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Pune", "Mumbai"}, cities)
}

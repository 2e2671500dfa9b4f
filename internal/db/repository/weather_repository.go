package repository

import (
	"time"

	"github.com/weathervane/backend/internal/db/models"
	"gorm.io/gorm"
)

// WeatherRepository defines operations for the raw sample log
type WeatherRepository interface {
	Repository
	InsertSample(sample *models.WeatherSample) error
	GetLatestSample(city string) (*models.WeatherSample, error)
	GetSamplesByTimeRange(city string, start, end time.Time) ([]models.WeatherSample, error)
	GetConditionDistribution(city string, since time.Time) (map[string]int, error)
	DistinctCities() ([]string, error)
	SoftDeleteOldSamples(city string, cutoff time.Time) (int64, error)
	HardDeleteOldSamples(cutoff time.Time) (int64, error)
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	BaseRepository
}

// NewWeatherRepository creates a new weather sample repository
func NewWeatherRepository(db *gorm.DB) WeatherRepository {
	return &weatherRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// InsertSample appends one raw weather sample
func (r *weatherRepository) InsertSample(sample *models.WeatherSample) error {
	err := r.GetDB().Create(sample).Error
	return r.handleError(err)
}

// GetLatestSample retrieves the most recent non-deleted sample for a city
func (r *weatherRepository) GetLatestSample(city string) (*models.WeatherSample, error) {
	var sample models.WeatherSample
	err := r.GetDB().Where("city = ? AND deleted = ?", city, false).
		Order("observed_at desc").
		Limit(1).
		First(&sample).Error

	if err != nil {
		return nil, r.handleError(err)
	}

	return &sample, nil
}

// GetSamplesByTimeRange retrieves non-deleted samples within [start, end],
// newest first
func (r *weatherRepository) GetSamplesByTimeRange(city string, start, end time.Time) ([]models.WeatherSample, error) {
	var samples []models.WeatherSample

	err := r.GetDB().
		Where("city = ? AND observed_at >= ? AND observed_at <= ? AND deleted = ?", city, start, end, false).
		Order("observed_at desc").
		Find(&samples).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	return samples, nil
}

// GetConditionDistribution counts samples per coarse condition since the
// given instant
func (r *weatherRepository) GetConditionDistribution(city string, since time.Time) (map[string]int, error) {
	var rows []struct {
		ConditionMain string
		Count         int
	}

	err := r.GetDB().Model(&models.WeatherSample{}).
		Select("condition_main, count(*) as count").
		Where("city = ? AND observed_at >= ? AND deleted = ?", city, since, false).
		Group("condition_main").
		Scan(&rows).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	distribution := make(map[string]int, len(rows))
	for _, row := range rows {
		distribution[row.ConditionMain] = row.Count
	}

	return distribution, nil
}

// DistinctCities lists every city that has at least one sample
func (r *weatherRepository) DistinctCities() ([]string, error) {
	var cities []string

	err := r.GetDB().Model(&models.WeatherSample{}).
		Distinct("city").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	return cities, nil
}

// latestSampleIDs returns the id of the newest sample per city in scope.
// The sweep must never touch these rows, so an inactive city keeps its
// last reading.
func (r *weatherRepository) latestSampleIDs(city string) ([]uint, error) {
	cities := []string{city}
	if city == "" {
		var err error
		cities, err = r.DistinctCities()
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uint, 0, len(cities))
	for _, c := range cities {
		var sample models.WeatherSample
		err := r.GetDB().Select("id").
			Where("city = ?", c).
			Order("observed_at desc").
			Limit(1).
			First(&sample).Error
		if err != nil {
			if r.handleError(err) == ErrNotFound {
				continue
			}
			return nil, r.handleError(err)
		}
		ids = append(ids, sample.ID)
	}

	return ids, nil
}

// SoftDeleteOldSamples marks samples strictly older than cutoff as deleted.
// An empty city sweeps every city. The newest sample per city is always kept.
func (r *weatherRepository) SoftDeleteOldSamples(city string, cutoff time.Time) (int64, error) {
	keep, err := r.latestSampleIDs(city)
	if err != nil {
		return 0, err
	}

	query := r.GetDB().Model(&models.WeatherSample{}).
		Where("observed_at < ? AND deleted = ?", cutoff, false)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}

	result := query.Update("deleted", true)
	if result.Error != nil {
		return 0, r.handleError(result.Error)
	}

	return result.RowsAffected, nil
}

// HardDeleteOldSamples permanently removes samples strictly older than cutoff,
// keeping the newest sample per city
func (r *weatherRepository) HardDeleteOldSamples(cutoff time.Time) (int64, error) {
	keep, err := r.latestSampleIDs("")
	if err != nil {
		return 0, err
	}

	query := r.GetDB().Where("observed_at < ?", cutoff)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}

	result := query.Delete(&models.WeatherSample{})
	if result.Error != nil {
		return 0, r.handleError(result.Error)
	}

	return result.RowsAffected, nil
}

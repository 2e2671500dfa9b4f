package repository

import (
	"encoding/json"
	"fmt"

	"github.com/weathervane/backend/internal/db/models"
	"gorm.io/gorm"
)

// DashboardRepository defines operations for pre-computed summaries
type DashboardRepository interface {
	Repository
	UpsertSummary(summary *models.DashboardSummary) error
	GetLatestSummary(city string) (*models.DashboardSummary, error)
	DeleteByCity(city string) error
}

// dashboardRepository implements DashboardRepository
type dashboardRepository struct {
	BaseRepository
}

// NewDashboardRepository creates a new dashboard summary repository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// UpsertSummary replaces the live summary for a city. The delete and insert
// run in one transaction, so a failed save leaves the prior summary intact.
func (r *dashboardRepository) UpsertSummary(summary *models.DashboardSummary) error {
	record, err := toSummaryRecord(summary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = r.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("city = ?", summary.City).
			Delete(&models.DashboardSummaryRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})

	return r.handleError(err)
}

// GetLatestSummary retrieves the live summary for a city
func (r *dashboardRepository) GetLatestSummary(city string) (*models.DashboardSummary, error) {
	var record models.DashboardSummaryRecord
	err := r.GetDB().Where("city = ?", city).
		Order("generated_at desc").
		Limit(1).
		First(&record).Error
	if err != nil {
		return nil, r.handleError(err)
	}

	summary, err := fromSummaryRecord(&record)
	if err != nil {
		return nil, fmt.Errorf("%w: stored summary is malformed: %v", ErrDatabase, err)
	}

	return summary, nil
}

// DeleteByCity removes all summaries for a city
func (r *dashboardRepository) DeleteByCity(city string) error {
	err := r.GetDB().Where("city = ?", city).
		Delete(&models.DashboardSummaryRecord{}).Error
	return r.handleError(err)
}

// toSummaryRecord serializes the nested summary documents for storage
func toSummaryRecord(summary *models.DashboardSummary) (*models.DashboardSummaryRecord, error) {
	record := &models.DashboardSummaryRecord{
		City:        summary.City,
		SummaryType: summary.SummaryType,
		GeneratedAt: summary.GeneratedAt,
	}

	if summary.Current != nil {
		data, err := json.Marshal(summary.Current)
		if err != nil {
			return nil, err
		}
		record.CurrentJSON = string(data)
	}

	data, err := json.Marshal(summary.TodayStats)
	if err != nil {
		return nil, err
	}
	record.TodayStatsJSON = string(data)

	if data, err = json.Marshal(summary.HourlyTrend); err != nil {
		return nil, err
	}
	record.HourlyTrendJSON = string(data)

	if data, err = json.Marshal(summary.DailyTrend); err != nil {
		return nil, err
	}
	record.DailyTrendJSON = string(data)

	if data, err = json.Marshal(summary.ConditionDistribution); err != nil {
		return nil, err
	}
	record.DistributionJSON = string(data)

	return record, nil
}

// fromSummaryRecord deserializes a stored summary, validating shape on read
func fromSummaryRecord(record *models.DashboardSummaryRecord) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{
		City:        record.City,
		SummaryType: record.SummaryType,
		GeneratedAt: record.GeneratedAt,
	}

	if record.CurrentJSON != "" {
		var current models.CurrentWeather
		if err := json.Unmarshal([]byte(record.CurrentJSON), &current); err != nil {
			return nil, err
		}
		summary.Current = &current
	}

	if err := json.Unmarshal([]byte(record.TodayStatsJSON), &summary.TodayStats); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(record.HourlyTrendJSON), &summary.HourlyTrend); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(record.DailyTrendJSON), &summary.DailyTrend); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(record.DistributionJSON), &summary.ConditionDistribution); err != nil {
		return nil, err
	}

	return summary, nil
}

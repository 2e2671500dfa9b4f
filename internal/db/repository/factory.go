package repository

import "gorm.io/gorm"

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db            *gorm.DB
	weatherRepo   WeatherRepository
	dashboardRepo DashboardRepository
	alertRepo     AlertRepository
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(db *gorm.DB) *RepositoryFactory {
	return &RepositoryFactory{
		db: db,
	}
}

// Weather returns the weather sample repository
func (f *RepositoryFactory) Weather() WeatherRepository {
	if f.weatherRepo == nil {
		f.weatherRepo = NewWeatherRepository(f.db)
	}
	return f.weatherRepo
}

// Dashboard returns the dashboard summary repository
func (f *RepositoryFactory) Dashboard() DashboardRepository {
	if f.dashboardRepo == nil {
		f.dashboardRepo = NewDashboardRepository(f.db)
	}
	return f.dashboardRepo
}

// Alert returns the alert repository
func (f *RepositoryFactory) Alert() AlertRepository {
	if f.alertRepo == nil {
		f.alertRepo = NewAlertRepository(f.db)
	}
	return f.alertRepo
}

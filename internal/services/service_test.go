package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/config"
	"github.com/weathervane/backend/internal/db/models"
	"github.com/weathervane/backend/internal/db/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepos creates an isolated in-memory database and a repository
// factory over it
func setupTestRepos(t *testing.T) *repository.RepositoryFactory {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.WeatherSample{},
		&models.DashboardSummaryRecord{},
		&models.AlertRecord{},
	)
	require.NoError(t, err)

	return repository.NewRepositoryFactory(db)
}

func testAlertsConfig() *config.AlertsConfig {
	return &config.AlertsConfig{
		TempHighThreshold:  35.0,
		TempLowThreshold:   5.0,
		HumidityThreshold:  80.0,
		ExtremeConditions:  []string{"Storm", "Thunderstorm", "Tornado", "Hurricane"},
		CooldownMinutes:    60,
		TempCriticalMargin: 5.0,
		HumidityWarnMargin: 10.0,
	}
}

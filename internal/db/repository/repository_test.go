package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/weathervane/backend/internal/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an isolated in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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

	return db
}

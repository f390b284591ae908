package service

import (
	"testing"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Opportunity{},
		&models.UserFeedback{},
		&models.FeedbackAnalytics{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.ChatUsage{},
	))

	return db
}

func testLogger() *logger.Logger {
	return logger.GetGlobal()
}

func createTestUser(t *testing.T, db *gorm.DB, externalID string, unlimited bool) *models.User {
	t.Helper()

	user := &models.User{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		Name:       "Test User",
		Status:     models.UserStatusActive,
		Unlimited:  unlimited,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Country:     "Estonia",
		Categories:  models.StringList{"govtech"},
		Description: "A test catalog entry",
		Website:     "https://example.com",
		Active:      active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

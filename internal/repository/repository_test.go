package repository

import (
	"context"
	"fmt"
	"testing"

	"canteenhub/internal/database"
	"canteenhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, n int) *models.User {
	t.Helper()
	user := &models.User{
		Name:       fmt.Sprintf("Student %d", n),
		Email:      fmt.Sprintf("student%d@du.ac.bd", n),
		Phone:      "01712345678",
		Year:       "2nd",
		Hall:       "Rokeya Hall",
		Department: "Physics",
		Password:   "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedReview(t *testing.T, db *gorm.DB, userID uint, item string) *models.Review {
	t.Helper()
	review := &models.Review{
		UserID:      userID,
		CanteenName: "TSC Cafeteria",
		ItemName:    item,
		Rating:      4,
		Comment:     "Good food",
		MealTime:    models.MealTimeLunch,
	}
	require.NoError(t, db.Create(review).Error)
	return review
}

func testCtx() context.Context {
	return context.Background()
}

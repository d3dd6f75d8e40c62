package service

import (
	"context"
	"fmt"
	"testing"

	"canteenhub/internal/cache"
	"canteenhub/internal/database"
	"canteenhub/internal/models"
	"canteenhub/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db      *gorm.DB
	store   *cache.Store
	mr      *miniredis.Miniredis
	users   repository.UserRepository
	reviews repository.ReviewRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return &fixture{
		db:      db,
		store:   cache.NewWithClient(client),
		mr:      mr,
		users:   repository.NewUserRepository(db),
		reviews: repository.NewReviewRepository(db),
	}
}

func (f *fixture) seedUser(t *testing.T, n int) *models.User {
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
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *fixture) seedReview(t *testing.T, userID uint) *models.Review {
	t.Helper()
	review := &models.Review{
		UserID:      userID,
		CanteenName: "TSC Cafeteria",
		ItemName:    "Chicken Curry",
		Rating:      4,
		Comment:     "Good food",
		MealTime:    models.MealTimeLunch,
	}
	require.NoError(t, f.db.Create(review).Error)
	return review
}

// fakeUploader records payloads and returns a canned URL.
type fakeUploader struct {
	payloads []string
	url      string
	err      error
}

func (u *fakeUploader) Upload(_ context.Context, payload string) (string, error) {
	u.payloads = append(u.payloads, payload)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

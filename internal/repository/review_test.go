package repository

import (
	"testing"
	"time"

	"canteenhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	user := seedUser(t, db, 1)

	review := &models.Review{
		UserID:      user.ID,
		CanteenName: "TSC Cafeteria",
		ItemName:    "Chicken Curry",
		Rating:      4,
		Comment:     "Good food",
		MealTime:    models.MealTimeLunch,
	}
	require.NoError(t, repo.Create(testCtx(), review))
	assert.NotZero(t, review.ID)

	got, err := repo.GetByID(testCtx(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chicken Curry", got.ItemName)

	// The author is attached with public fields only.
	require.NotNil(t, got.User)
	assert.Equal(t, user.Name, got.User.Name)
	assert.Equal(t, user.Email, got.User.Email)
	assert.Empty(t, got.User.Password)
	assert.Empty(t, got.User.Phone)
}

func TestReviewRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	_, err := repo.GetByID(testCtx(), 42)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestReviewRepositoryListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	user := seedUser(t, db, 1)

	older := seedReview(t, db, user.ID, "Dal and Bhaji")
	require.NoError(t, db.Model(older).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	newer := seedReview(t, db, user.ID, "Beef Tehari")

	reviews, total, err := repo.List(testCtx(), 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, newer.ID, reviews[0].ID)
	assert.Equal(t, older.ID, reviews[1].ID)
	require.NotNil(t, reviews[0].User)
	assert.Empty(t, reviews[0].User.Password)
}

func TestReviewRepositoryListPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	user := seedUser(t, db, 1)

	for i := 0; i < 7; i++ {
		seedReview(t, db, user.ID, "Chicken Khichuri")
	}

	page, total, err := repo.List(testCtx(), 3, 6)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.Len(t, page, 1)
}

func TestReviewRepositoryUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	user := seedUser(t, db, 1)
	review := seedReview(t, db, user.ID, "Chicken Curry")

	review.Rating = 2
	review.Comment = "Quality dropped lately"
	require.NoError(t, repo.Update(testCtx(), review))

	got, err := repo.GetByID(testCtx(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, "Quality dropped lately", got.Comment)
}

func TestReviewRepositoryDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	user := seedUser(t, db, 1)
	review := seedReview(t, db, user.ID, "Chicken Curry")

	require.NoError(t, repo.Delete(testCtx(), review.ID))

	_, err := repo.GetByID(testCtx(), review.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestReviewRepositoryDeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)

	err := repo.Delete(testCtx(), 42)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

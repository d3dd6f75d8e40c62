// Package service implements the business logic of the portal.
package service

import (
	"context"
	"strings"

	"canteenhub/internal/cache"
	"canteenhub/internal/models"
	"canteenhub/internal/observability"
	"canteenhub/internal/repository"
	"canteenhub/internal/storage"
	"canteenhub/internal/validation"
)

// ReviewPage is one page of the public review feed.
type ReviewPage struct {
	Reviews    []models.Review   `json:"reviews"`
	Pagination models.Pagination `json:"pagination"`
}

// ReviewInput is the client payload for creating a review.
type ReviewInput struct {
	UserID      uint   `json:"user"`
	CanteenName string `json:"canteenName"`
	ItemName    string `json:"itemName"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	MealTime    string `json:"mealTime"`
	Image       string `json:"image,omitempty"`
}

// ReviewUpdateInput carries the fields a review author may change.
// Pointer fields distinguish "absent" from "set to zero".
type ReviewUpdateInput struct {
	CanteenName *string `json:"canteenName,omitempty"`
	ItemName    *string `json:"itemName,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	MealTime    *string `json:"mealTime,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// ReviewService coordinates review persistence, image storage and the
// review feed cache.
type ReviewService struct {
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	store    *cache.Store
	uploader storage.Uploader
}

// NewReviewService wires a ReviewService from its collaborators. The
// uploader may be nil when image storage is not configured.
func NewReviewService(reviews repository.ReviewRepository, users repository.UserRepository, store *cache.Store, uploader storage.Uploader) *ReviewService {
	return &ReviewService{reviews: reviews, users: users, store: store, uploader: uploader}
}

// Validate returns the list of field failures for a create payload.
func (s *ReviewService) Validate(in ReviewInput) []string {
	return validation.ValidateReview(validation.ReviewInput{
		UserID:      in.UserID,
		CanteenName: in.CanteenName,
		ItemName:    in.ItemName,
		Rating:      in.Rating,
		Comment:     in.Comment,
		MealTime:    models.MealTime(in.MealTime),
	})
}

// Create persists a review for an existing user, uploading the attached
// image first when one is present, and invalidates the cached feed.
func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	imageURL := ""
	if in.Image != "" {
		if s.uploader == nil {
			return nil, models.NewValidationError("image uploads are not enabled")
		}
		url, err := s.uploader.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	review := &models.Review{
		UserID:      in.UserID,
		CanteenName: strings.TrimSpace(in.CanteenName),
		ItemName:    strings.TrimSpace(in.ItemName),
		Rating:      in.Rating,
		Comment:     strings.TrimSpace(in.Comment),
		MealTime:    models.MealTime(in.MealTime),
		ImageURL:    imageURL,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	observability.ReviewsCreated.WithLabelValues(in.MealTime).Inc()

	s.invalidateFeed(ctx)

	// Reload so the response carries the trimmed author record.
	created, err := s.reviews.GetByID(ctx, review.ID)
	if err != nil {
		return review, nil
	}
	return created, nil
}

// ListPage returns one page of the review feed, served from cache when
// a fresh copy exists.
func (s *ReviewService) ListPage(ctx context.Context, page, limit int) (*ReviewPage, error) {
	key := cache.ReviewPageKey(page, limit)
	var result ReviewPage
	fetched := false
	err := s.store.Aside(ctx, key, &result, cache.ReviewPageTTL, func() error {
		fetched = true
		reviews, total, err := s.reviews.List(ctx, limit, (page-1)*limit)
		if err != nil {
			return err
		}
		result = ReviewPage{
			Reviews:    reviews,
			Pagination: models.NewPagination(total, page, limit),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fetched {
		observability.ReviewListCacheLookups.WithLabelValues("miss").Inc()
	} else {
		observability.ReviewListCacheLookups.WithLabelValues("hit").Inc()
	}
	return &result, nil
}

// Update applies a partial edit to a review owned by userID. The merged
// result must still satisfy the creation rules.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID uint, in ReviewUpdateInput) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, models.NewForbiddenError("You can only update your own reviews")
	}

	if in.CanteenName != nil {
		review.CanteenName = strings.TrimSpace(*in.CanteenName)
	}
	if in.ItemName != nil {
		review.ItemName = strings.TrimSpace(*in.ItemName)
	}
	if in.Rating != nil {
		review.Rating = *in.Rating
	}
	if in.Comment != nil {
		review.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.MealTime != nil {
		review.MealTime = models.MealTime(*in.MealTime)
	}
	if in.Image != nil && *in.Image != "" {
		if s.uploader == nil {
			return nil, models.NewValidationError("image uploads are not enabled")
		}
		url, err := s.uploader.Upload(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		review.ImageURL = url
	}

	if errs := validation.ValidateReview(validation.ReviewInput{
		UserID:      review.UserID,
		CanteenName: review.CanteenName,
		ItemName:    review.ItemName,
		Rating:      review.Rating,
		Comment:     review.Comment,
		MealTime:    review.MealTime,
	}); len(errs) > 0 {
		return nil, models.NewValidationError(strings.Join(errs, "; "))
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)
	return review, nil
}

// Delete removes a review owned by userID and invalidates the feed.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID uint) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return models.NewForbiddenError("You can only delete your own reviews")
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// invalidateFeed drops every cached review page after a write.
func (s *ReviewService) invalidateFeed(ctx context.Context) {
	s.store.InvalidatePrefix(ctx, cache.ReviewPagePrefix)
}

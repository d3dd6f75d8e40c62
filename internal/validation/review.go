package validation

import (
	"fmt"
	"strings"

	"canteenhub/internal/models"
)

// ReviewInput is the set of review fields subject to validation. The same
// rules apply at creation time and to the merged result of an update.
type ReviewInput struct {
	UserID      uint
	CanteenName string
	ItemName    string
	Rating      int
	Comment     string
	MealTime    models.MealTime
}

// ValidateReview checks every review field independently and returns the
// full list of failures.
func ValidateReview(in ReviewInput) []string {
	var errs []string

	if in.UserID == 0 {
		errs = append(errs, "User id is required")
	}
	if strings.TrimSpace(in.CanteenName) == "" {
		errs = append(errs, "Canteen name is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		errs = append(errs, "Rating must be between 1 and 5")
	}
	if len(strings.TrimSpace(in.Comment)) < 5 {
		errs = append(errs, "Comment must be at least 5 characters")
	}
	if len(strings.TrimSpace(in.ItemName)) < 5 {
		errs = append(errs, "Item name must be at least 5 characters")
	}
	if !in.MealTime.Valid() {
		errs = append(errs, fmt.Sprintf("Meal time must be one of %s", mealTimeList()))
	}

	return errs
}

func mealTimeList() string {
	var names []string
	for _, m := range models.MealTimes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

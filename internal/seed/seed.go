// Package seed fills a development database with plausible portal data.
package seed

import (
	"fmt"
	"strings"

	"canteenhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var halls = []string{
	"Shahidullah Hall",
	"Fazlul Huq Muslim Hall",
	"Salimullah Muslim Hall",
	"Jagannath Hall",
	"Rokeya Hall",
	"Shamsun Nahar Hall",
	"Surja Sen Hall",
	"Kabi Jasimuddin Hall",
}

var departments = []string{
	"Computer Science and Engineering",
	"Physics",
	"Economics",
	"English",
	"Applied Mathematics",
	"Sociology",
	"Pharmacy",
	"Law",
}

var years = []string{"1st", "2nd", "3rd", "4th", "Masters"}

var canteens = []string{
	"TSC Cafeteria",
	"Curzon Hall Canteen",
	"Central Library Canteen",
	"Shahidullah Hall Canteen",
	"IBA Canteen",
	"Madhur Canteen",
}

var menuItems = []string{
	"Chicken Khichuri",
	"Beef Tehari",
	"Vegetable Curry with Rice",
	"Morog Polao",
	"Dal and Bhaji",
	"Egg Fried Rice",
	"Chicken Biryani",
	"Shingara and Cha",
}

// Run inserts users and reviews. The password for every seeded
// account is "password".
func Run(db *gorm.DB, users, reviewsPerUser int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for i := 0; i < users; i++ {
		user := models.User{
			Name:       gofakeit.Name(),
			Email:      seedEmail(i),
			Phone:      fmt.Sprintf("01%d%s", gofakeit.Number(3, 9), gofakeit.DigitN(8)),
			Year:       gofakeit.RandomString(years),
			Hall:       gofakeit.RandomString(halls),
			Department: gofakeit.RandomString(departments),
			Password:   string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}

		for j := 0; j < reviewsPerUser; j++ {
			review := models.Review{
				UserID:      user.ID,
				CanteenName: gofakeit.RandomString(canteens),
				ItemName:    gofakeit.RandomString(menuItems),
				Rating:      gofakeit.Number(1, 5),
				Comment:     gofakeit.Sentence(12),
				MealTime:    models.MealTime(gofakeit.RandomString(mealTimeNames())),
			}
			if err := db.Create(&review).Error; err != nil {
				return fmt.Errorf("seed review for user %d: %w", user.ID, err)
			}
		}
	}
	return nil
}

func seedEmail(i int) string {
	local := strings.ToLower(gofakeit.LetterN(4))
	return fmt.Sprintf("%s%d@du.ac.bd", local, i)
}

func mealTimeNames() []string {
	times := models.MealTimes()
	names := make([]string, len(times))
	for i, t := range times {
		names[i] = string(t)
	}
	return names
}
